package commands

import (
	"context"

	"ecodeli/internal/core/domain/model/deliverer"
)

type RegisterDelivererCommandHandler struct {
	uowFactory DelivererUoWFactory
}

func NewRegisterDelivererCommandHandler(uowFactory DelivererUoWFactory) RegisterDelivererCommandHandler {
	return RegisterDelivererCommandHandler{uowFactory: uowFactory}
}

// Handle stores the profile and returns it.
func (h RegisterDelivererCommandHandler) Handle(
	ctx context.Context,
	cmd RegisterDelivererCommand,
) (*deliverer.Deliverer, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	p := cmd.Params()

	d, err := deliverer.NewDeliverer(p.DelivererID, p.Name, p.Verified, p.Location, p.PreferredCategories)
	if err != nil {
		return nil, err
	}
	for _, in := range p.RouteZones {
		zone, err := deliverer.NewRouteZone(in.Center, in.RadiusKm)
		if err != nil {
			return nil, err
		}
		d.AddRouteZone(zone)
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DelivererRepository().Add(ctx, d); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return d, nil
}
