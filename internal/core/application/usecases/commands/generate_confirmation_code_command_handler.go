package commands

import (
	"context"
	"fmt"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/ports"
	"ecodeli/internal/pkg/errs"
)

// GenerateConfirmationCodeCommandHandler issues the single active code of a delivery
// and sends it to the client, who hands it over at the door. Issuing again replaces
// the previous code, used or not.
type GenerateConfirmationCodeCommandHandler struct {
	uowFactory TrackingUoWFactory
	publisher  Publisher
	ttl        time.Duration
}

// NewGenerateConfirmationCodeCommandHandler creates the handler. A non-positive ttl
// falls back to delivery.DefaultConfirmationCodeTTL.
func NewGenerateConfirmationCodeCommandHandler(
	uowFactory TrackingUoWFactory,
	publisher Publisher,
	ttl time.Duration,
) GenerateConfirmationCodeCommandHandler {
	if ttl <= 0 {
		ttl = delivery.DefaultConfirmationCodeTTL
	}
	return GenerateConfirmationCodeCommandHandler{uowFactory: uowFactory, publisher: publisher, ttl: ttl}
}

// Handle returns the new code.
//
// Returns:
//   - PermissionDeniedError unless the actor is the assigned deliverer or an admin
//   - InvalidTransitionError when the delivery is already closed
func (h GenerateConfirmationCodeCommandHandler) Handle(
	ctx context.Context,
	cmd GenerateConfirmationCodeCommand,
) (*delivery.ConfirmationCode, error) {
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
	if err = d.AuthorizeDeliverer(cmd.Actor(), "generate confirmation code", true); err != nil {
		return nil, err
	}
	if d.Status().IsTerminal() {
		return nil, errs.NewInvalidTransitionErrorWithCause(d.Status().String(), delivery.Delivered.String(),
			fmt.Errorf("delivery %s is closed", d.ID()))
	}

	code, err := delivery.GenerateConfirmationCode(d.ID(), time.Now().UTC(), h.ttl)
	if err != nil {
		return nil, err
	}
	if err = uow.ProofRepository().SaveConfirmationCode(ctx, code); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	outbox := events.NewOutbox()
	outbox.Notify(ports.Notification{
		UserID:   d.ClientID(),
		Title:    "Confirmation code",
		Message:  fmt.Sprintf("Give code %s to your courier to confirm the delivery", code.Code()),
		Category: CategoryDeliveryUpdate,
		Link:     fmt.Sprintf(clientDeliveryLink, d.ID()),
		Data: map[string]any{
			"deliveryId": d.ID().String(),
			"expiresAt":  code.ExpiresAt(),
		},
	})
	h.publisher.Flush(ctx, outbox)

	return code, nil
}
