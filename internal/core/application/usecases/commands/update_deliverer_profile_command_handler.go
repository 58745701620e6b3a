package commands

import (
	"context"

	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/pkg/errs"
)

// UpdateDelivererProfileCommandHandler applies a profile change. Only the deliverer
// or an admin may change a profile.
type UpdateDelivererProfileCommandHandler struct {
	uowFactory DelivererUoWFactory
}

func NewUpdateDelivererProfileCommandHandler(uowFactory DelivererUoWFactory) UpdateDelivererProfileCommandHandler {
	return UpdateDelivererProfileCommandHandler{uowFactory: uowFactory}
}

// Handle returns the updated profile.
func (h UpdateDelivererProfileCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateDelivererProfileCommand,
) (*deliverer.Deliverer, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if actor := cmd.Actor(); !actor.IsAdmin() && !actor.Is(cmd.DelivererID()) {
		return nil, errs.NewPermissionDeniedError(actor.ID().String(), "update deliverer "+cmd.DelivererID().String())
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DelivererRepository().Get(ctx, cmd.DelivererID())
	if err != nil {
		return nil, err
	}
	if err = cmd.apply(d); err != nil {
		return nil, err
	}
	if err = uow.DelivererRepository().Update(ctx, d); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return d, nil
}
