package deliverer

import (
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
)

// MaxRouteZoneRadiusKm bounds a declared zone.
const MaxRouteZoneRadiusKm = 500.0

// RouteZone is a circle around a center point the deliverer regularly travels.
type RouteZone struct {
	center   kernel.Location
	radiusKm float64
}

// NewRouteZone validates the center and a radius in (0, MaxRouteZoneRadiusKm].
func NewRouteZone(center kernel.Location, radiusKm float64) (RouteZone, error) {
	if err := center.Validate(); err != nil {
		return RouteZone{}, err
	}
	if radiusKm <= 0 || radiusKm > MaxRouteZoneRadiusKm {
		return RouteZone{}, errs.NewValueIsOutOfRangeError("radiusKm", radiusKm, 0, MaxRouteZoneRadiusKm)
	}
	return RouteZone{center: center, radiusKm: radiusKm}, nil
}

// Center returns the zone center.
func (z RouteZone) Center() kernel.Location { return z.center }

// RadiusKm returns the zone radius in kilometers.
func (z RouteZone) RadiusKm() float64 { return z.radiusKm }

// Contains reports whether point is inside the zone, boundary included.
func (z RouteZone) Contains(point kernel.Location) bool {
	return kernel.IsWithinRadius(z.center, point, z.radiusKm*1000)
}
