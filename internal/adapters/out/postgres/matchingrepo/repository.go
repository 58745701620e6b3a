package matchingrepo

import (
	"context"
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMatchRepository implements MatchRepository using GORM.
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a new GORM match repository.
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// Upsert inserts the candidate or, when the pair already exists, refreshes its scores
// and leaves id, status and responded_at alone. The stored row is read back.
func (r *GormMatchRepository) Upsert(ctx context.Context, candidate *matching.Candidate) (*matching.Candidate, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	dto := fromDomain(candidate)
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "announcement_id"}, {Name: "deliverer_id"}},
		DoUpdates: clause.AssignmentColumns(scoreColumns),
	}).Create(&dto).Error; err != nil {
		return nil, err
	}

	var stored MatchCandidateDTO
	if err := db.First(&stored, "announcement_id = ? AND deliverer_id = ?", dto.AnnouncementID, dto.DelivererID).
		Error; err != nil {
		return nil, err
	}
	return toDomain(stored)
}

// Get retrieves a candidate by ID.
func (r *GormMatchRepository) Get(ctx context.Context, id kernel.UUID) (*matching.Candidate, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto MatchCandidateDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("match", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

// SaveResponse stores the decision only while the row is still PENDING. Under
// concurrent answers the loser's UPDATE matches no row.
func (r *GormMatchRepository) SaveResponse(ctx context.Context, candidate *matching.Candidate) error {
	if err := candidate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&MatchCandidateDTO{}).
		Where("id = ? AND status = ?", candidate.ID().Bytes(), matching.Pending.String()).
		Updates(map[string]any{
			"status":       candidate.Status().String(),
			"responded_at": candidate.RespondedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewConcurrentModificationError("match", candidate.ID().String())
	}
	return nil
}

// ListByAnnouncement returns the candidates of an announcement, best first. Ties go to
// the closer deliverer, then to the smaller deliverer id.
func (r *GormMatchRepository) ListByAnnouncement(
	ctx context.Context,
	announcementID kernel.UUID,
) ([]*matching.Candidate, error) {
	var dtos []MatchCandidateDTO
	if err := r.db.WithContext(ctx).
		Where("announcement_id = ?", announcementID.Bytes()).
		Order("total_score DESC, distance_km ASC NULLS LAST, deliverer_id::text").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	candidates := make([]*matching.Candidate, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
