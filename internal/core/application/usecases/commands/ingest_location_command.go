package commands

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrIngestLocationCommandIsNotConstructed = errors.New(
	"IngestLocationCommand must be created via NewIngestLocationCommand constructor",
)

// IngestLocationCommand carries one position ping sent by a courier.
type IngestLocationCommand struct {
	deliveryID kernel.UUID
	actor      kernel.Actor
	location   kernel.Location
	telemetry  delivery.Telemetry
	recordedAt *time.Time

	guard guard.ConstructorGuard
}

// NewIngestLocationCommand validates a ping. recordedAt is the device timestamp; when
// nil the server time is used.
func NewIngestLocationCommand(
	deliveryID kernel.UUID,
	actor kernel.Actor,
	location kernel.Location,
	telemetry delivery.Telemetry,
	recordedAt *time.Time,
) (IngestLocationCommand, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate(), location.Validate()); err != nil {
		return IngestLocationCommand{}, err
	}

	cmd := IngestLocationCommand{
		deliveryID: deliveryID,
		actor:      actor,
		location:   location,
		telemetry:  telemetry,
		guard:      guard.NewConstructorGuard(),
	}
	if recordedAt != nil {
		t := recordedAt.UTC()
		cmd.recordedAt = &t
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c IngestLocationCommand) Validate() error {
	return c.guard.Validate(ErrIngestLocationCommandIsNotConstructed)
}

func (c IngestLocationCommand) DeliveryID() kernel.UUID       { return c.deliveryID }
func (c IngestLocationCommand) Actor() kernel.Actor           { return c.actor }
func (c IngestLocationCommand) Location() kernel.Location     { return c.location }
func (c IngestLocationCommand) Telemetry() delivery.Telemetry { return c.telemetry }

// RecordedAt returns the ping time, falling back to now.
func (c IngestLocationCommand) RecordedAt(now time.Time) time.Time {
	if c.recordedAt == nil {
		return now
	}
	return *c.recordedAt
}
