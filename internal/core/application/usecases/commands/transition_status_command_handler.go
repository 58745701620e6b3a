package commands

import (
	"context"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/ports"
)

// TransitionStatusCommandHandler applies manual status changes.
//
// The whole read-validate-write cycle runs in one transaction and the delivery update
// is conditional on its version, so two concurrent transitions from the same status
// cannot both succeed: the loser gets a ConcurrentModificationError.
//
// Example:
//
//	entry, err := handler.Handle(ctx, cmd)
//	switch {
//	case errs.IsRetryable(err):
//	    // refetch and retry
//	case errors.Is(err, errs.ErrInvalidTransition):
//	    // not allowed from the current status
//	}
type TransitionStatusCommandHandler struct {
	uowFactory TrackingUoWFactory
	publisher  Publisher
	flow       statusFlow
}

// NewTransitionStatusCommandHandler creates the handler. geocoder may be nil.
func NewTransitionStatusCommandHandler(
	uowFactory TrackingUoWFactory,
	publisher Publisher,
	geocoder ports.Geocoder,
) TransitionStatusCommandHandler {
	return TransitionStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		flow:       newStatusFlow(geocoder),
	}
}

// Handle applies the transition and returns the appended history entry.
func (h TransitionStatusCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionStatusCommand,
) (*delivery.StatusHistoryEntry, error) {
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

	outbox := events.NewOutbox()
	req := transitionRequest{to: cmd.Status(), actor: cmd.Actor(), details: cmd.Details()}
	entry, err := h.flow.transition(ctx, uow, d, req, time.Now().UTC(), outbox)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	h.publisher.Flush(ctx, outbox)

	return entry, nil
}
