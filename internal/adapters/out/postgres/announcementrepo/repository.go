package announcementrepo

import (
	"context"
	"errors"

	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormAnnouncementRepository implements AnnouncementRepository using GORM.
type GormAnnouncementRepository struct {
	db *gorm.DB
}

// NewGormAnnouncementRepository creates a new GORM announcement repository.
func NewGormAnnouncementRepository(db *gorm.DB) *GormAnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

// Add saves a new announcement.
func (r *GormAnnouncementRepository) Add(ctx context.Context, aggregate *announcement.Announcement) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves an existing announcement.
func (r *GormAnnouncementRepository) Update(ctx context.Context, aggregate *announcement.Announcement) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&AnnouncementDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "client_id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("announcement", aggregate.ID().String())
	}
	return nil
}

// Get retrieves an announcement by ID.
func (r *GormAnnouncementRepository) Get(ctx context.Context, id kernel.UUID) (*announcement.Announcement, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AnnouncementDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("announcement", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

// GetAllOpen retrieves OPEN announcements, oldest first.
func (r *GormAnnouncementRepository) GetAllOpen(ctx context.Context, limit int) ([]*announcement.Announcement, error) {
	if limit <= 0 {
		return []*announcement.Announcement{}, nil
	}

	var dtos []AnnouncementDTO
	if err := r.db.WithContext(ctx).
		Where("status = ?", announcement.Open.String()).
		Order("created_at, id").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	announcements := make([]*announcement.Announcement, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, nil
}
