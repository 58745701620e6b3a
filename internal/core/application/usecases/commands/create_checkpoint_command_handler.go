package commands

import (
	"context"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/ports"
)

// CreateCheckpointCommandHandler stores checkpoints. A DELIVERY checkpoint on a
// delivery that is not yet DELIVERED also closes it, through the regular lifecycle
// rules, in the same transaction.
type CreateCheckpointCommandHandler struct {
	uowFactory TrackingUoWFactory
	publisher  Publisher
	flow       statusFlow
}

func NewCreateCheckpointCommandHandler(
	uowFactory TrackingUoWFactory,
	publisher Publisher,
	geocoder ports.Geocoder,
) CreateCheckpointCommandHandler {
	return CreateCheckpointCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		flow:       newStatusFlow(geocoder),
	}
}

// Handle records the checkpoint and returns it.
//
// Returns:
//   - PermissionDeniedError unless the actor is the deliverer, the client or an admin
//   - InvalidConfirmationCodeError when a supplied code is not the active one
//   - InvalidTransitionError when a DELIVERY checkpoint cannot close the delivery
func (h CreateCheckpointCommandHandler) Handle(
	ctx context.Context,
	cmd CreateCheckpointCommand,
) (*delivery.Checkpoint, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()

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
	if err = d.AuthorizeParticipant(cmd.Actor(), "create checkpoint"); err != nil {
		return nil, err
	}

	checkpoint, err := cmd.Checkpoint(d, now)
	if err != nil {
		return nil, err
	}

	code, err := consumeConfirmationCode(ctx, uow, d, cmd.ConfirmationCode(), now)
	if err != nil {
		return nil, err
	}

	outbox := events.NewOutbox()
	if checkpoint.IsDelivery() && d.Status() != delivery.Delivered {
		req := transitionRequest{
			to:      delivery.Delivered,
			actor:   cmd.Actor(),
			details: delivery.TransitionDetails{Location: checkpoint.Location(), Notes: checkpoint.Notes()},
			proof:   checkpoint,
		}
		if _, err = h.flow.transition(ctx, uow, d, req, now, outbox); err != nil {
			return nil, err
		}
	} else {
		if err = uow.ProofRepository().AddCheckpoint(ctx, checkpoint); err != nil {
			return nil, err
		}
		outbox.Broadcast(d.ID(), delivery.NewCheckpointReachedEvent(checkpoint))
	}

	if code != nil {
		if err = uow.ProofRepository().SaveConfirmationCode(ctx, code); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	h.publisher.Flush(ctx, outbox)

	return checkpoint, nil
}
