package geocoding_test

import (
	"context"
	"testing"

	"ecodeli/internal/adapters/out/geocoding"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateGeocoder_Geocode(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		lat, lng float64
		wantErr  bool
	}{
		{name: "bare pair", address: "48.8584, 2.2945", lat: 48.8584, lng: 2.2945},
		{name: "address with suffix", address: "10 Avenue Foch, Paris @48.8718,2.2870", lat: 48.8718, lng: 2.2870},
		{name: "plain address", address: "10 Avenue Foch, Paris", wantErr: true},
		{name: "out of range", address: "@95,2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := geocoding.NewCoordinateGeocoder().Geocode(t.Context(), tt.address)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, loc.Latitude(), 1e-9)
			assert.InDelta(t, tt.lng, loc.Longitude(), 1e-9)
		})
	}
}

func TestCoordinateGeocoder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := geocoding.NewCoordinateGeocoder().Geocode(ctx, "1,1")
	require.ErrorIs(t, err, context.Canceled)
}
