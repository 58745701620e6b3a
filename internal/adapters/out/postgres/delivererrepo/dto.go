// Package delivererrepo persists deliverer profiles with their availability windows
// and route zones.
package delivererrepo

import (
	"time"

	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DelivererDTO represents the database structure of a deliverer profile.
type DelivererDTO struct {
	ID                  uuid.UUID               `gorm:"type:uuid;primaryKey"`
	Name                string                  `gorm:"type:varchar(255);not null"`
	Active              bool                    `gorm:"not null;default:true"`
	Verified            bool                    `gorm:"not null;default:false"`
	Latitude            *float64                `gorm:"type:double precision"`
	Longitude           *float64                `gorm:"type:double precision"`
	PreferredCategories pq.StringArray          `gorm:"type:text[]"`
	AverageRating       *float64                `gorm:"type:double precision"`
	RatingsCount        int                     `gorm:"not null;default:0"`
	Availability        []AvailabilityWindowDTO `gorm:"foreignKey:DelivererID;constraint:OnDelete:CASCADE"`
	RouteZones          []RouteZoneDTO          `gorm:"foreignKey:DelivererID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default "deliverer_dtos".
func (DelivererDTO) TableName() string {
	return "deliverers"
}

// AvailabilityWindowDTO is a declared availability interval.
type AvailabilityWindowDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	DelivererID uuid.UUID `gorm:"type:uuid;not null;index"`
	StartsAt    time.Time `gorm:"not null"`
	EndsAt      time.Time `gorm:"not null"`
	IsAvailable bool      `gorm:"not null"`
}

// TableName overrides GORM's default "availability_window_dtos".
func (AvailabilityWindowDTO) TableName() string {
	return "deliverer_availability"
}

// RouteZoneDTO is a circle the deliverer usually travels through.
type RouteZoneDTO struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	DelivererID uuid.UUID `gorm:"type:uuid;not null;index"`
	Latitude    float64   `gorm:"type:double precision;not null"`
	Longitude   float64   `gorm:"type:double precision;not null"`
	RadiusKm    float64   `gorm:"type:double precision;not null"`
}

// TableName overrides GORM's default "route_zone_dtos".
func (RouteZoneDTO) TableName() string {
	return "deliverer_route_zones"
}

// Models lists every table owned by this package, for migrations.
func Models() []any {
	return []any{&DelivererDTO{}, &AvailabilityWindowDTO{}, &RouteZoneDTO{}}
}

func fromDomain(d *deliverer.Deliverer) DelivererDTO {
	delivererID := d.ID().Bytes()

	dto := DelivererDTO{
		ID:                  delivererID,
		Name:                d.Name(),
		Active:              d.IsActive(),
		Verified:            d.IsVerified(),
		PreferredCategories: pq.StringArray(d.PreferredCategories()),
		AverageRating:       d.AverageRating(),
		RatingsCount:        d.RatingsCount(),
		Availability:        make([]AvailabilityWindowDTO, 0, len(d.Availability())),
		RouteZones:          make([]RouteZoneDTO, 0, len(d.RouteZones())),
	}
	if loc := d.Location(); loc != nil {
		lat, lng := loc.Latitude(), loc.Longitude()
		dto.Latitude, dto.Longitude = &lat, &lng
	}

	for _, w := range d.Availability() {
		dto.Availability = append(dto.Availability, AvailabilityWindowDTO{
			ID:          w.ID().Bytes(),
			DelivererID: delivererID,
			StartsAt:    w.Start(),
			EndsAt:      w.End(),
			IsAvailable: w.IsAvailable(),
		})
	}
	for _, z := range d.RouteZones() {
		dto.RouteZones = append(dto.RouteZones, RouteZoneDTO{
			DelivererID: delivererID,
			Latitude:    z.Center().Latitude(),
			Longitude:   z.Center().Longitude(),
			RadiusKm:    z.RadiusKm(),
		})
	}

	return dto
}

func toDomain(dto DelivererDTO) (*deliverer.Deliverer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.Latitude != nil && dto.Longitude != nil {
		loc, locErr := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	windows := make([]*deliverer.AvailabilityWindow, 0, len(dto.Availability))
	for _, w := range dto.Availability {
		wID, idErr := kernel.UUIDFromBytes(w.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		window, wErr := deliverer.NewAvailabilityWindow(wID, w.StartsAt, w.EndsAt, w.IsAvailable)
		if wErr != nil {
			return nil, wErr
		}
		windows = append(windows, window)
	}

	zones := make([]deliverer.RouteZone, 0, len(dto.RouteZones))
	for _, z := range dto.RouteZones {
		center, cErr := kernel.NewLocation(z.Latitude, z.Longitude)
		if cErr != nil {
			return nil, cErr
		}
		zone, zErr := deliverer.NewRouteZone(center, z.RadiusKm)
		if zErr != nil {
			return nil, zErr
		}
		zones = append(zones, zone)
	}

	return deliverer.RestoreDeliverer(deliverer.RestoreParams{
		ID:                  id,
		Name:                dto.Name,
		Active:              dto.Active,
		Verified:            dto.Verified,
		Location:            location,
		PreferredCategories: dto.PreferredCategories,
		AverageRating:       dto.AverageRating,
		RatingsCount:        dto.RatingsCount,
		Availability:        windows,
		RouteZones:          zones,
	})
}
