package deliveryrepo

import (
	"context"
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTrackingRepository implements TrackingRepository using GORM.
type GormTrackingRepository struct {
	db *gorm.DB
}

// NewGormTrackingRepository creates a new GORM tracking repository.
func NewGormTrackingRepository(db *gorm.DB) *GormTrackingRepository {
	return &GormTrackingRepository{db: db}
}

// AppendStatus inserts a status history row.
func (r *GormTrackingRepository) AppendStatus(ctx context.Context, entry *delivery.StatusHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	dto := statusEntryFromDomain(entry)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// AppendPosition inserts a position ping.
func (r *GormTrackingRepository) AppendPosition(ctx context.Context, position *delivery.TrackingPosition) error {
	if err := position.Validate(); err != nil {
		return err
	}
	dto := positionFromDomain(position)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetPositionsSince returns pings at or after since, oldest first.
func (r *GormTrackingRepository) GetPositionsSince(
	ctx context.Context,
	deliveryID kernel.UUID,
	since time.Time,
) ([]*delivery.TrackingPosition, error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, err
	}

	var dtos []TrackingPositionDTO
	if err := r.db.WithContext(ctx).
		Where("delivery_id = ? AND recorded_at >= ?", deliveryID.Bytes(), since).
		Order("recorded_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	positions := make([]*delivery.TrackingPosition, 0, len(dtos))
	for _, dto := range dtos {
		p, err := positionToDomain(dto)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// GetETA returns the live estimate of a delivery.
func (r *GormTrackingRepository) GetETA(ctx context.Context, deliveryID kernel.UUID) (*delivery.ETA, error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, err
	}

	var dto ETADTO
	if err := r.db.WithContext(ctx).First(&dto, "delivery_id = ?", deliveryID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("eta", deliveryID.String())
		}
		return nil, err
	}
	return etaToDomain(dto)
}

// SaveETA upserts the live estimate keyed by delivery.
func (r *GormTrackingRepository) SaveETA(ctx context.Context, eta *delivery.ETA) error {
	if err := eta.Validate(); err != nil {
		return err
	}
	dto := etaFromDomain(eta)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "delivery_id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}
