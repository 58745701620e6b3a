package deliveryrepo

import (
	"context"
	"errors"

	"ecodeli/internal/adapters/out/postgres/pgerrs"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDeliveryRepository implements DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GORM delivery repository.
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Add saves a new delivery. The unique index on announcement_id turns a second
// delivery for the same announcement into a ConcurrentModificationError.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerrs.IsUniqueViolation(err, announcementConstraint) {
			return errs.NewConcurrentModificationErrorWithCause("delivery", aggregate.AnnouncementID().String(), err)
		}
		return err
	}
	return nil
}

// Update writes every column of the delivery when the stored version still matches
// the aggregate's, then bumps the version.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&DeliveryDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id", "announcement_id", "client_id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&DeliveryDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("delivery", aggregate.ID().String())
		}
		return errs.NewConcurrentModificationError("delivery", aggregate.ID().String())
	}

	aggregate.CommitVersion()
	return nil
}

// Get retrieves a delivery by ID.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllInFlight retrieves IN_TRANSIT and NEARBY deliveries whose tracking is on.
func (r *GormDeliveryRepository) GetAllInFlight(ctx context.Context) ([]*delivery.Delivery, error) {
	var dtos []DeliveryDTO
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND tracking_enabled", []string{delivery.InTransit.String(), delivery.Nearby.String()}).
		Order("created_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	deliveries := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

// CountActiveByDeliverer counts the deliveries of a deliverer that are not terminal.
func (r *GormDeliveryRepository) CountActiveByDeliverer(ctx context.Context, delivererID kernel.UUID) (int, error) {
	if err := delivererID.Validate(); err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&DeliveryDTO{}).
		Where("deliverer_id = ? AND status NOT IN ?", delivererID.Bytes(), terminalStatuses()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// terminalStatuses returns the stored names of every terminal status.
func terminalStatuses() []string {
	var names []string
	for _, s := range delivery.AllStatuses() {
		if s.IsTerminal() {
			names = append(names, s.String())
		}
	}
	return names
}
