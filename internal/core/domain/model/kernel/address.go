package kernel

import (
	"strings"

	"ecodeli/internal/pkg/errs"
)

// Address is a postal address with optional pre-geocoded coordinates.
type Address struct {
	text     string
	location *Location
}

// NewAddress requires a non-empty text; location may be nil when the address
// has not been geocoded yet.
func NewAddress(text string, location *Location) (Address, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Address{}, errs.NewValueIsRequiredError("address")
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return Address{}, err
		}
		loc := *location
		location = &loc
	}
	return Address{text: text, location: location}, nil
}

// Text returns the address as entered.
func (a Address) Text() string {
	return a.text
}

// Location returns the coordinates, or nil if the address is not geocoded.
func (a Address) Location() *Location {
	if a.location == nil {
		return nil
	}
	loc := *a.location
	return &loc
}

// IsGeocoded reports whether usable coordinates are attached. A 0,0 point counts as unknown.
func (a Address) IsGeocoded() bool {
	return a.location != nil && !a.location.IsZero()
}
