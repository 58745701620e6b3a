package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetMatchCandidatesQueryHandler struct {
	db *gorm.DB
}

func NewGetMatchCandidatesQueryHandler(db *gorm.DB) GetMatchCandidatesQueryHandler {
	return GetMatchCandidatesQueryHandler{db: db}
}

// Handle ranks by total score, then by distance to pickup and finally by
// deliverer id, the same order FindBestMatches uses.
//
// Returns:
//   - ObjectNotFoundError when the announcement does not exist
//   - PermissionDeniedError unless the actor is the announcement's client or an admin
func (h GetMatchCandidatesQueryHandler) Handle(
	ctx context.Context,
	query GetMatchCandidatesQuery,
) ([]GetMatchCandidatesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var owner uuid.UUID
	err := h.db.WithContext(ctx).
		Raw(`SELECT client_id FROM announcements WHERE id = ?`, query.AnnouncementID().Bytes()).
		Row().Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewObjectNotFoundError("announcement", query.AnnouncementID().String())
	}
	if err != nil {
		return nil, err
	}
	actor := query.Actor()
	if !actor.IsAdmin() && actor.ID().Bytes() != owner {
		return nil, errs.NewPermissionDeniedError(actor.ID().String(), "view match candidates")
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			m.id, m.deliverer_id, COALESCE(d.name, ''),
			m.distance_score, m.rating_score, m.availability_score, m.preference_score, m.route_score,
			m.total_score, m.distance_km, m.is_in_route, m.is_available,
			m.status, m.calculated_at, m.responded_at
		FROM match_candidates m
		LEFT JOIN deliverers d ON d.id = m.deliverer_id
		WHERE m.announcement_id = ?
		ORDER BY m.total_score DESC, m.distance_km ASC NULLS LAST, m.deliverer_id::text
	`, query.AnnouncementID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]GetMatchCandidatesQueryResponse, 0)
	for rows.Next() {
		var (
			c               GetMatchCandidatesQueryResponse
			id, delivererID uuid.UUID
			status          string
			calculatedAt    time.Time
		)
		if err = rows.Scan(
			&id, &delivererID, &c.DelivererName,
			&c.Scores.Distance, &c.Scores.Rating, &c.Scores.Availability, &c.Scores.Preference, &c.Scores.Route,
			&c.TotalScore, &c.DistanceKm, &c.IsInRoute, &c.IsAvailable,
			&status, &calculatedAt, &c.RespondedAt,
		); err != nil {
			return nil, err
		}

		if c.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if c.DelivererID, err = kernel.UUIDFromBytes(delivererID[:]); err != nil {
			return nil, err
		}
		if c.Status, err = matching.ParseStatus(status); err != nil {
			return nil, err
		}
		if c.DistanceKm != nil {
			minutes := matching.EstimateMinutes(*c.DistanceKm)
			c.EstimatedMinutes = &minutes
		}
		c.CalculatedAt = calculatedAt
		candidates = append(candidates, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}
