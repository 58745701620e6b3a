// Package announcementrepo persists client announcements awaiting a courier.
package announcementrepo

import (
	"time"

	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AnnouncementDTO represents the database structure of an announcement.
type AnnouncementDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Title            string    `gorm:"type:varchar(255);not null"`
	Category         string    `gorm:"type:varchar(64);not null"`
	PickupAddress    string    `gorm:"type:text;not null"`
	PickupLatitude   *float64  `gorm:"type:double precision"`
	PickupLongitude  *float64  `gorm:"type:double precision"`
	DropoffAddress   string    `gorm:"type:text;not null"`
	DropoffLatitude  *float64  `gorm:"type:double precision"`
	DropoffLongitude *float64  `gorm:"type:double precision"`
	SuggestedPrice   *float64  `gorm:"type:double precision"`
	ScheduledDate    *time.Time
	Status           string    `gorm:"type:varchar(16);not null;index:idx_announcements_status_created,priority:1"`
	CreatedAt        time.Time `gorm:"not null;index:idx_announcements_status_created,priority:2"`
}

// TableName overrides GORM's default "announcement_dtos".
func (AnnouncementDTO) TableName() string {
	return "announcements"
}

// Models lists every table owned by this package, for migrations.
func Models() []any {
	return []any{&AnnouncementDTO{}}
}

func coordinates(a kernel.Address) (*float64, *float64) {
	loc := a.Location()
	if loc == nil {
		return nil, nil
	}
	lat, lng := loc.Latitude(), loc.Longitude()
	return &lat, &lng
}

func fromDomain(a *announcement.Announcement) AnnouncementDTO {
	pickupLat, pickupLng := coordinates(a.Pickup())
	dropoffLat, dropoffLng := coordinates(a.Dropoff())

	return AnnouncementDTO{
		ID:               a.ID().Bytes(),
		ClientID:         a.ClientID().Bytes(),
		Title:            a.Title(),
		Category:         a.Category(),
		PickupAddress:    a.Pickup().Text(),
		PickupLatitude:   pickupLat,
		PickupLongitude:  pickupLng,
		DropoffAddress:   a.Dropoff().Text(),
		DropoffLatitude:  dropoffLat,
		DropoffLongitude: dropoffLng,
		SuggestedPrice:   a.SuggestedPrice(),
		ScheduledDate:    a.ScheduledDate(),
		Status:           a.Status().String(),
		CreatedAt:        a.CreatedAt(),
	}
}

func address(text string, lat, lng *float64) (kernel.Address, error) {
	if lat == nil || lng == nil {
		return kernel.NewAddress(text, nil)
	}
	loc, err := kernel.NewLocation(*lat, *lng)
	if err != nil {
		return kernel.Address{}, err
	}
	return kernel.NewAddress(text, &loc)
}

func toDomain(dto AnnouncementDTO) (*announcement.Announcement, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	clientID, err := kernel.UUIDFromBytes(dto.ClientID[:])
	if err != nil {
		return nil, err
	}
	pickup, err := address(dto.PickupAddress, dto.PickupLatitude, dto.PickupLongitude)
	if err != nil {
		return nil, err
	}
	dropoff, err := address(dto.DropoffAddress, dto.DropoffLatitude, dto.DropoffLongitude)
	if err != nil {
		return nil, err
	}
	status, err := announcement.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return announcement.RestoreAnnouncement(announcement.Params{
		ID:             id,
		ClientID:       clientID,
		Title:          dto.Title,
		Category:       dto.Category,
		Pickup:         pickup,
		Dropoff:        dropoff,
		SuggestedPrice: dto.SuggestedPrice,
		ScheduledDate:  dto.ScheduledDate,
	}, status, dto.CreatedAt)
}
