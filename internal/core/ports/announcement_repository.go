package ports

import (
	"context"

	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/kernel"
)

// AnnouncementRepository defines the persistence contract for announcements.
type AnnouncementRepository interface {
	Add(ctx context.Context, aggregate *announcement.Announcement) error
	Update(ctx context.Context, aggregate *announcement.Announcement) error
	Get(ctx context.Context, id kernel.UUID) (*announcement.Announcement, error)

	// GetAllOpen returns OPEN announcements, oldest first, up to limit rows.
	GetAllOpen(ctx context.Context, limit int) ([]*announcement.Announcement, error)
}
