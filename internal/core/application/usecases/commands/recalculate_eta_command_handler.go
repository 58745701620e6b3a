package commands

import (
	"context"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/ports"
)

// RecalculateETACommandHandler recomputes and stores the live estimate of a delivery.
type RecalculateETACommandHandler struct {
	uowFactory TrackingUoWFactory
	publisher  Publisher
	flow       statusFlow
}

// NewRecalculateETACommandHandler creates the handler. geocoder may be nil.
func NewRecalculateETACommandHandler(
	uowFactory TrackingUoWFactory,
	publisher Publisher,
	geocoder ports.Geocoder,
) RecalculateETACommandHandler {
	return RecalculateETACommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		flow:       newStatusFlow(geocoder),
	}
}

// Handle returns the new estimate, or nil when none can be computed: the delivery has
// no position yet or its tracking session is over. Nothing is written in that case.
func (h RecalculateETACommandHandler) Handle(ctx context.Context, cmd RecalculateETACommand) (*delivery.ETA, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().Get(ctx, cmd.DeliveryID())
	if err != nil {
		return nil, err
	}
	if actor := cmd.Actor(); actor != nil {
		if err = d.AuthorizeParticipant(*actor, "recalculate delivery ETA"); err != nil {
			return nil, err
		}
	}
	if !d.TrackingEnabled() {
		return nil, nil
	}

	outbox := events.NewOutbox()
	eta, err := h.flow.estimate(ctx, uow, d, time.Now().UTC(), outbox)
	if err != nil || eta == nil {
		return nil, err
	}

	if err = uow.DeliveryRepository().Update(ctx, d); err != nil {
		return nil, err
	}
	if err = uow.TrackingRepository().SaveETA(ctx, eta); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	outbox.Broadcast(d.ID(), delivery.NewETAUpdateEvent(eta))
	outbox.ETARecomputed(eta.CalculationType())
	h.publisher.Flush(ctx, outbox)

	return eta, nil
}
