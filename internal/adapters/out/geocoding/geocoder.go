// Package geocoding resolves addresses that carry their own coordinates.
package geocoding

import (
	"context"
	"strings"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/ports"
	"ecodeli/internal/pkg/errs"
)

// CoordinateGeocoder accepts either a bare "lat,lng" pair or an address
// followed by "@lat,lng", as in "10 Avenue Foch, Paris @48.8718,2.2870".
// Anything else is reported as unresolvable.
type CoordinateGeocoder struct{}

func NewCoordinateGeocoder() CoordinateGeocoder {
	return CoordinateGeocoder{}
}

func (CoordinateGeocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	if err := ctx.Err(); err != nil {
		return kernel.Location{}, err
	}

	candidate := address
	if i := strings.LastIndex(address, "@"); i >= 0 {
		candidate = address[i+1:]
	}
	loc, err := kernel.ParseLocation(candidate)
	if err != nil {
		return kernel.Location{}, errs.NewValueIsInvalidErrorWithCause("address", err)
	}
	return loc, nil
}

var _ ports.Geocoder = CoordinateGeocoder{}
