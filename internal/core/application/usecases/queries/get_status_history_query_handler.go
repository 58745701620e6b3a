package queries

import (
	"context"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetStatusHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetStatusHistoryQueryHandler(db *gorm.DB) GetStatusHistoryQueryHandler {
	return GetStatusHistoryQueryHandler{db: db}
}

// Handle reads the history in the order it was appended. The location snapshot
// is pulled out of its jsonb column by the database.
func (h GetStatusHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetStatusHistoryQuery,
) ([]GetStatusHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := authorizeViewer(ctx, h.db, query.DeliveryID(), query.Actor(), "view status history"); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id, status, previous_status, changed_at, actor_id,
			(location->>'latitude')::double precision,
			(location->>'longitude')::double precision,
			notes, reason, customer_notified
		FROM delivery_status_history
		WHERE delivery_id = ?
		ORDER BY changed_at, id
	`, query.DeliveryID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]GetStatusHistoryQueryResponse, 0)
	for rows.Next() {
		var (
			entry            GetStatusHistoryQueryResponse
			id, actorID      uuid.UUID
			status, previous string
			changedAt        time.Time
			lat, lng         *float64
		)
		if err = rows.Scan(
			&id, &status, &previous, &changedAt, &actorID,
			&lat, &lng, &entry.Notes, &entry.Reason, &entry.CustomerNotified,
		); err != nil {
			return nil, err
		}

		if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if entry.ActorID, err = kernel.UUIDFromBytes(actorID[:]); err != nil {
			return nil, err
		}
		if entry.Status, err = delivery.ParseStatus(status); err != nil {
			return nil, err
		}
		if entry.PreviousStatus, err = delivery.ParseStatus(previous); err != nil {
			return nil, err
		}
		if entry.Location, err = nullableLocation(lat, lng); err != nil {
			return nil, err
		}
		entry.ChangedAt = changedAt
		history = append(history, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
