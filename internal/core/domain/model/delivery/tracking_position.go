package delivery

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
)

// ErrTrackingPositionIsNotConstructed is returned for zero-value positions.
var ErrTrackingPositionIsNotConstructed = errors.New(
	"TrackingPosition must be created via NewTrackingPosition constructor")

// Telemetry is the optional sensor data attached to a ping.
type Telemetry struct {
	Accuracy *float64 // meters
	Heading  *float64 // degrees clockwise from north, [0, 360)
	Speed    *float64 // km/h
	Altitude *float64 // meters
}

// TrackingPosition is one row of a delivery's append-only position time series.
type TrackingPosition struct {
	id            kernel.UUID
	deliveryID    kernel.UUID
	location      kernel.Location
	telemetry     Telemetry
	timestamp     time.Time
	isConstructed bool
}

// NewTrackingPosition validates the location and telemetry ranges.
func NewTrackingPosition(
	id, deliveryID kernel.UUID,
	location kernel.Location,
	telemetry Telemetry,
	timestamp time.Time,
) (*TrackingPosition, error) {
	if err := errors.Join(
		id.Validate(),
		deliveryID.Validate(),
		location.Validate(),
		validateTelemetry(telemetry),
	); err != nil {
		return nil, err
	}

	return &TrackingPosition{
		id:            id,
		deliveryID:    deliveryID,
		location:      location,
		telemetry:     telemetry,
		timestamp:     timestamp,
		isConstructed: true,
	}, nil
}

func validateTelemetry(t Telemetry) error {
	var list []error
	if t.Accuracy != nil && *t.Accuracy < 0 {
		list = append(list, errs.NewValueIsOutOfRangeError("accuracy", *t.Accuracy, 0, "unbounded"))
	}
	if t.Heading != nil && (*t.Heading < 0 || *t.Heading >= 360) {
		list = append(list, errs.NewValueIsOutOfRangeError("heading", *t.Heading, 0, 360))
	}
	if t.Speed != nil && *t.Speed < 0 {
		list = append(list, errs.NewValueIsOutOfRangeError("speed", *t.Speed, 0, "unbounded"))
	}
	return errors.Join(list...)
}

// Validate ensures the position was built through NewTrackingPosition.
func (p *TrackingPosition) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrTrackingPositionIsNotConstructed
	}
	return nil
}

func (p *TrackingPosition) ID() kernel.UUID           { return p.id }
func (p *TrackingPosition) DeliveryID() kernel.UUID   { return p.deliveryID }
func (p *TrackingPosition) Location() kernel.Location { return p.location }
func (p *TrackingPosition) Telemetry() Telemetry      { return p.telemetry }
func (p *TrackingPosition) Timestamp() time.Time      { return p.timestamp }

// HasPositiveSpeed reports whether the ping carries a usable speed sample.
func (p *TrackingPosition) HasPositiveSpeed() bool {
	return p.telemetry.Speed != nil && *p.telemetry.Speed > 0
}
