package deliveryrepo

import (
	"context"
	"errors"

	"ecodeli/internal/adapters/out/postgres/pgerrs"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProofRepository implements ProofRepository using GORM.
type GormProofRepository struct {
	db *gorm.DB
}

// NewGormProofRepository creates a new GORM proof repository.
func NewGormProofRepository(db *gorm.DB) *GormProofRepository {
	return &GormProofRepository{db: db}
}

// AddCheckpoint inserts a checkpoint.
func (r *GormProofRepository) AddCheckpoint(ctx context.Context, checkpoint *delivery.Checkpoint) error {
	if err := checkpoint.Validate(); err != nil {
		return err
	}
	dto := checkpointFromDomain(checkpoint)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// HasCheckpoint reports whether the delivery has a checkpoint of the given type.
func (r *GormProofRepository) HasCheckpoint(
	ctx context.Context,
	deliveryID kernel.UUID,
	checkpointType delivery.CheckpointType,
) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&CheckpointDTO{}).
		Where("delivery_id = ? AND type = ?", deliveryID.Bytes(), string(checkpointType)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetConfirmationCode returns the current code of a delivery.
func (r *GormProofRepository) GetConfirmationCode(
	ctx context.Context,
	deliveryID kernel.UUID,
) (*delivery.ConfirmationCode, error) {
	var dto ConfirmationCodeDTO
	if err := r.db.WithContext(ctx).First(&dto, "delivery_id = ?", deliveryID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("confirmationCode", deliveryID.String())
		}
		return nil, err
	}
	return codeToDomain(dto)
}

// SaveConfirmationCode upserts the code, replacing a previous one.
func (r *GormProofRepository) SaveConfirmationCode(ctx context.Context, code *delivery.ConfirmationCode) error {
	if err := code.Validate(); err != nil {
		return err
	}
	dto := codeFromDomain(code)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "delivery_id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

// AddRating inserts a rating; the (delivery, rater) unique index rejects duplicates.
func (r *GormProofRepository) AddRating(ctx context.Context, rating *delivery.Rating) error {
	if err := rating.Validate(); err != nil {
		return err
	}
	dto := ratingFromDomain(rating)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerrs.IsUniqueViolation(err, raterConstraint) {
			return errs.NewValueIsInvalidErrorWithCause("rating", errors.New("delivery already rated by this user"))
		}
		return err
	}
	return nil
}
