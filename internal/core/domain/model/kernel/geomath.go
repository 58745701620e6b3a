package kernel

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6_371_000.0

// DistanceMeters returns the haversine great-circle distance between a and b.
//
// The result is symmetric, zero for identical points and about 111.2 km for
// one degree of latitude.
//
// Example:
//
//	d := kernel.DistanceMeters(courierPosition, destination)
//	if d <= 300 {
//	    // courier is nearby
//	}
func DistanceMeters(a, b Location) float64 {
	lat1 := degreesToRadians(a.latitude)
	lat2 := degreesToRadians(b.latitude)
	dLat := degreesToRadians(b.latitude - a.latitude)
	dLng := degreesToRadians(b.longitude - a.longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h slightly above 1 for antipodal points
	h = math.Min(1, h)

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ETAMinutes converts a remaining distance and a travel speed into minutes.
// The caller guarantees speedKmh > 0.
//
// Example:
//
//	kernel.ETAMinutes(15_000, 30) // 30 minutes
func ETAMinutes(distanceMeters, speedKmh float64) float64 {
	metersPerSecond := speedKmh * 1000 / 3600
	return distanceMeters / metersPerSecond / 60
}

// IsWithinRadius reports whether point lies within radiusMeters of center, boundary included.
func IsWithinRadius(center, point Location, radiusMeters float64) bool {
	return DistanceMeters(center, point) <= radiusMeters
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
