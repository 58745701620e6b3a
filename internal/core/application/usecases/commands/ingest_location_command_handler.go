package commands

import (
	"context"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/services"
	"ecodeli/internal/core/ports"
)

// IngestLocationResult describes what a ping changed.
type IngestLocationResult struct {
	Status delivery.Status
	// Advanced is set when the ping moved the delivery to NEARBY or ARRIVED.
	Advanced bool
	// DistanceMeters is the distance to the destination, -1 when unknown.
	DistanceMeters float64
	// ETA is the recomputed estimate, nil when none was computed.
	ETA *delivery.ETA
}

// IngestLocationCommandHandler runs the ping pipeline as one transaction:
// store the position, move the delivery's current location, auto-advance on proximity
// and refresh the ETA while the courier is in flight. The proximity check and the ETA
// both read the position written by the same ping.
type IngestLocationCommandHandler struct {
	uowFactory TrackingUoWFactory
	publisher  Publisher
	flow       statusFlow
	advancer   services.ProximityAdvancer
}

// NewIngestLocationCommandHandler creates the handler. geocoder may be nil.
func NewIngestLocationCommandHandler(
	uowFactory TrackingUoWFactory,
	publisher Publisher,
	geocoder ports.Geocoder,
) IngestLocationCommandHandler {
	return IngestLocationCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		flow:       newStatusFlow(geocoder),
		advancer:   services.NewProximityAdvancer(),
	}
}

// Handle ingests the ping.
//
// Returns:
//   - PermissionDeniedError unless the actor is the assigned deliverer
//   - TrackingDisabledError once tracking has ended
//   - ConcurrentModificationError when another write to the delivery won the race
func (h IngestLocationCommandHandler) Handle(ctx context.Context, cmd IngestLocationCommand) (IngestLocationResult, error) {
	if err := cmd.Validate(); err != nil {
		return IngestLocationResult{}, err
	}
	now := time.Now().UTC()
	at := cmd.RecordedAt(now)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return IngestLocationResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().Get(ctx, cmd.DeliveryID())
	if err != nil {
		return IngestLocationResult{}, err
	}

	if err = d.RecordPosition(cmd.Actor(), cmd.Location(), at); err != nil {
		return IngestLocationResult{}, err
	}
	position, err := delivery.NewTrackingPosition(kernel.NewUUID(), d.ID(), cmd.Location(), cmd.Telemetry(), at)
	if err != nil {
		return IngestLocationResult{}, err
	}

	if err = uow.TrackingRepository().AppendPosition(ctx, position); err != nil {
		return IngestLocationResult{}, err
	}

	outbox := events.NewOutbox()
	outbox.Broadcast(d.ID(), delivery.NewLocationUpdateEvent(position))
	outbox.LocationIngested()

	result, err := h.advance(ctx, uow, d, cmd, now, outbox)
	if err != nil {
		return IngestLocationResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return IngestLocationResult{}, err
	}
	h.publisher.Flush(ctx, outbox)

	return result, nil
}

func (h IngestLocationCommandHandler) advance(
	ctx context.Context,
	uow TrackingUoW,
	d *delivery.Delivery,
	cmd IngestLocationCommand,
	now time.Time,
	outbox *events.Outbox,
) (IngestLocationResult, error) {
	h.flow.resolveDestination(ctx, d, outbox)
	proximity := h.advancer.Check(d)
	result := IngestLocationResult{DistanceMeters: proximity.DistanceMeters}

	if proximity.Advance {
		location := cmd.Location()
		details := delivery.TransitionDetails{Location: &location, Notes: "automatic update on proximity"}
		req := transitionRequest{to: proximity.Next, actor: cmd.Actor(), details: details, automatic: true}
		if _, err := h.flow.transition(ctx, uow, d, req, now, outbox); err != nil {
			return IngestLocationResult{}, err
		}
		result.Status, result.Advanced = d.Status(), true
		if d.Status().IsInFlight() {
			eta, err := uow.TrackingRepository().GetETA(ctx, d.ID())
			if err == nil {
				result.ETA = eta
			}
		}
		return result, nil
	}

	var eta *delivery.ETA
	if d.Status().IsInFlight() {
		var err error
		if eta, err = h.flow.estimate(ctx, uow, d, now, outbox); err != nil {
			return IngestLocationResult{}, err
		}
	}
	if err := uow.DeliveryRepository().Update(ctx, d); err != nil {
		return IngestLocationResult{}, err
	}
	if eta != nil {
		if err := uow.TrackingRepository().SaveETA(ctx, eta); err != nil {
			return IngestLocationResult{}, err
		}
		outbox.Broadcast(d.ID(), delivery.NewETAUpdateEvent(eta))
		outbox.ETARecomputed(eta.CalculationType())
	}

	result.Status, result.ETA = d.Status(), eta
	return result, nil
}
