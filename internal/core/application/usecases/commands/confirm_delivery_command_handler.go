package commands

import (
	"context"
	"errors"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/ports"
	"ecodeli/internal/pkg/errs"
)

// ConfirmDeliveryCommandHandler closes a delivery: it checks and consumes the
// confirmation code, stores the DELIVERY checkpoint with its proofs, moves the
// delivery to DELIVERED and ends tracking, all in one transaction.
//
// Example:
//
//	cmd, _ := NewConfirmDeliveryCommand(ConfirmDeliveryParams{
//	    DeliveryID: id,
//	    Actor:      courier,
//	    Code:       "482913",
//	})
//	entry, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidConfirmationCode) {
//	    // ask the recipient for the current code
//	}
type ConfirmDeliveryCommandHandler struct {
	uowFactory TrackingUoWFactory
	publisher  Publisher
	flow       statusFlow
}

func NewConfirmDeliveryCommandHandler(
	uowFactory TrackingUoWFactory,
	publisher Publisher,
	geocoder ports.Geocoder,
) ConfirmDeliveryCommandHandler {
	return ConfirmDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		flow:       newStatusFlow(geocoder),
	}
}

// Handle confirms the drop-off and returns the DELIVERED history entry.
func (h ConfirmDeliveryCommandHandler) Handle(
	ctx context.Context,
	cmd ConfirmDeliveryCommand,
) (*delivery.StatusHistoryEntry, error) {
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
	if err = d.AuthorizeParticipant(cmd.Actor(), "confirm delivery"); err != nil {
		return nil, err
	}
	if err = d.Status().ValidateTransition(delivery.Delivered); err != nil {
		return nil, err
	}

	code, err := consumeConfirmationCode(ctx, uow, d, cmd.Code(), now)
	if err != nil {
		return nil, err
	}

	outbox := events.NewOutbox()
	h.flow.resolveDestination(ctx, d, outbox)
	location, err := bestKnownLocation(d, cmd.Location())
	if err != nil {
		return nil, err
	}
	proof, err := delivery.NewCheckpoint(delivery.CheckpointParams{
		ID:               kernel.NewUUID(),
		DeliveryID:       d.ID(),
		Type:             delivery.CheckpointDelivery,
		Location:         location,
		Address:          d.Dropoff().Text(),
		ActualTime:       now,
		CompletedBy:      cmd.Actor().ID(),
		Proofs:           cmd.Proofs(),
		ConfirmationCode: cmd.Code(),
		Notes:            cmd.Notes(),
	})
	if err != nil {
		return nil, err
	}

	req := transitionRequest{
		to:      delivery.Delivered,
		actor:   cmd.Actor(),
		details: delivery.TransitionDetails{Location: location, Notes: cmd.Notes()},
		proof:   proof,
	}
	entry, err := h.flow.transition(ctx, uow, d, req, now, outbox)
	if err != nil {
		return nil, err
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

	return entry, nil
}

// consumeConfirmationCode verifies candidate against the active code of d and marks
// it used. It returns nil when candidate is empty. A delivery without an issued code
// rejects any candidate.
func consumeConfirmationCode(
	ctx context.Context,
	tx ProofRepoFactory,
	d *delivery.Delivery,
	candidate string,
	now time.Time,
) (*delivery.ConfirmationCode, error) {
	if candidate == "" {
		return nil, nil
	}

	code, err := tx.ProofRepository().GetConfirmationCode(ctx, d.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, errs.NewInvalidConfirmationCodeErrorWithCause(d.ID().String(), err)
	}
	if err != nil {
		return nil, err
	}

	if err = code.Verify(candidate, now); err != nil {
		return nil, err
	}
	if err = code.MarkUsed(now); err != nil {
		return nil, err
	}
	return code, nil
}
