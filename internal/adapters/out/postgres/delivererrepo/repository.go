package delivererrepo

import (
	"context"
	"errors"

	"ecodeli/internal/adapters/out/postgres/pgerrs"
	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDelivererRepository implements DelivererRepository using GORM.
type GormDelivererRepository struct {
	db *gorm.DB
}

// NewGormDelivererRepository creates a new GORM deliverer repository.
func NewGormDelivererRepository(db *gorm.DB) *GormDelivererRepository {
	return &GormDelivererRepository{db: db}
}

// Add saves a new deliverer with its windows and zones.
func (r *GormDelivererRepository) Add(ctx context.Context, aggregate *deliverer.Deliverer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerrs.IsUniqueViolation(err) {
			return errs.NewValueIsInvalidErrorWithCause("delivererId", errors.New("deliverer already registered"))
		}
		return err
	}
	return nil
}

// Update rewrites the profile row and replaces the child rows with the aggregate's.
// Call it inside a unit of work so the replacement is atomic.
func (r *GormDelivererRepository) Update(ctx context.Context, aggregate *deliverer.Deliverer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&DelivererDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "Availability", "RouteZones").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("deliverer", aggregate.ID().String())
	}

	if err := db.Where("deliverer_id = ?", dto.ID).Delete(&AvailabilityWindowDTO{}).Error; err != nil {
		return err
	}
	if err := db.Where("deliverer_id = ?", dto.ID).Delete(&RouteZoneDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Availability) > 0 {
		if err := db.Create(&dto.Availability).Error; err != nil {
			return err
		}
	}
	if len(dto.RouteZones) > 0 {
		if err := db.Create(&dto.RouteZones).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a deliverer by ID.
func (r *GormDelivererRepository) Get(ctx context.Context, id kernel.UUID) (*deliverer.Deliverer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DelivererDTO
	if err := r.db.WithContext(ctx).
		Preload("Availability", func(db *gorm.DB) *gorm.DB { return db.Order("starts_at") }).
		Preload("RouteZones", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deliverer", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetForUpdate locks the deliverer row with SELECT ... FOR UPDATE, then loads the
// profile. Outside a transaction the lock is released immediately.
func (r *GormDelivererRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*deliverer.Deliverer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var locked DelivererDTO
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Take(&locked, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deliverer", id.String())
		}
		return nil, err
	}

	return r.Get(ctx, id)
}

// GetAllEligible retrieves every active and verified deliverer.
func (r *GormDelivererRepository) GetAllEligible(ctx context.Context) ([]*deliverer.Deliverer, error) {
	var dtos []DelivererDTO
	if err := r.db.WithContext(ctx).
		Preload("Availability").
		Preload("RouteZones").
		Where("active AND verified").
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	deliverers := make([]*deliverer.Deliverer, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		deliverers = append(deliverers, d)
	}

	return deliverers, nil
}
