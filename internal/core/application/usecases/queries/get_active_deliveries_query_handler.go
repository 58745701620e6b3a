package queries

import (
	"context"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveDeliveriesQueryHandler(db *gorm.DB) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{db: db}
}

// Handle returns the visible deliveries ordered by creation time, oldest first.
func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]GetActiveDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	tx := h.db.WithContext(ctx).
		Table("deliveries").
		Select(`id, tracking_code, status, client_id, deliverer_id, pickup_address, dropoff_address,
			current_latitude, current_longitude, last_location_update, estimated_arrival, created_at`).
		Where("status NOT IN ?", terminalStatusNames())

	actor := query.Actor()
	switch actor.Role() {
	case kernel.RoleAdmin:
		// no filter
	case kernel.RoleDeliverer:
		tx = tx.Where("deliverer_id = ?", actor.ID().Bytes())
	default:
		tx = tx.Where("client_id = ?", actor.ID().Bytes())
	}

	rows, err := tx.Order("created_at, id").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := make([]GetActiveDeliveriesQueryResponse, 0)
	for rows.Next() {
		var (
			d            GetActiveDeliveriesQueryResponse
			id, clientID uuid.UUID
			delivererID  uuid.NullUUID
			status       string
			lat, lng     *float64
			createdAt    time.Time
		)
		if err = rows.Scan(
			&id, &d.TrackingCode, &status, &clientID, &delivererID, &d.PickupAddress, &d.DropoffAddress,
			&lat, &lng, &d.LastLocationUpdate, &d.EstimatedArrival, &createdAt,
		); err != nil {
			return nil, err
		}

		if d.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if d.ClientID, err = kernel.UUIDFromBytes(clientID[:]); err != nil {
			return nil, err
		}
		if d.DelivererID, err = nullableUUID(delivererID); err != nil {
			return nil, err
		}
		if d.Status, err = delivery.ParseStatus(status); err != nil {
			return nil, err
		}
		if d.CurrentLocation, err = nullableLocation(lat, lng); err != nil {
			return nil, err
		}
		d.CreatedAt = createdAt
		deliveries = append(deliveries, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}

func terminalStatusNames() []string {
	var names []string
	for _, s := range delivery.AllStatuses() {
		if s.IsTerminal() {
			names = append(names, s.String())
		}
	}
	return names
}
