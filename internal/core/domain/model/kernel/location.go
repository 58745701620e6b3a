package kernel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

const (
	// MinLatitude and MaxLatitude bound the WGS84 latitude in degrees.
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation or ParseLocation")

// Location is a point on the Earth expressed as WGS84 latitude and longitude in degrees.
// It is an immutable value object; the zero value is invalid.
//
// Example:
//
//	eiffel, err := kernel.NewLocation(48.8584, 2.2945)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(eiffel) // Output: Location(48.858400,2.294500)
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation creates a Location after checking both coordinates are in range.
//
// Parameters:
//   - latitude: degrees in [-90, 90]
//   - longitude: degrees in [-180, 180]
//
// Returns:
//   - Location: a valid location
//   - error: ValueIsOutOfRangeError for each coordinate outside its bounds
func NewLocation(latitude, longitude float64) (Location, error) {
	var problems []error
	if latitude < MinLatitude || latitude > MaxLatitude || latitude != latitude {
		problems = append(problems, errs.NewValueIsOutOfRangeError("latitude", latitude, MinLatitude, MaxLatitude))
	}
	if longitude < MinLongitude || longitude > MaxLongitude || longitude != longitude {
		problems = append(problems, errs.NewValueIsOutOfRangeError("longitude", longitude, MinLongitude, MaxLongitude))
	}
	if len(problems) > 0 {
		return Location{}, errors.Join(problems...)
	}

	return Location{
		latitude:  latitude,
		longitude: longitude,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// ParseLocation reads a "lat,lng" pair such as "48.8584,2.2945".
// Surrounding whitespace is ignored.
//
// Example:
//
//	loc, err := kernel.ParseLocation(" 48.8584 , 2.2945 ")
func ParseLocation(s string) (Location, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Location{}, errs.NewValueIsInvalidErrorWithCause("location",
			fmt.Errorf("%q is not a lat,lng pair", s))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Location{}, errs.NewValueIsInvalidErrorWithCause("latitude", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Location{}, errs.NewValueIsInvalidErrorWithCause("longitude", err)
	}

	return NewLocation(lat, lng)
}

// Latitude returns the latitude in degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// IsEqual compares coordinates exactly.
func (l Location) IsEqual(other Location) bool {
	return l.latitude == other.latitude && l.longitude == other.longitude
}

// IsZero reports a 0,0 point, which upstream address data uses for "unknown".
func (l Location) IsZero() bool {
	return l.latitude == 0 && l.longitude == 0
}

// DistanceTo returns the great-circle distance to target in meters.
func (l Location) DistanceTo(target Location) float64 {
	return DistanceMeters(l, target)
}

// String returns "Location(lat,lng)" with six decimals (about 10 cm).
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// Validate returns ErrLocationIsNotConstructed for the zero value.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}
