package commands

import (
	"context"
	"errors"
	"fmt"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
)

// ETARecalculator recomputes the estimate of a single delivery.
type ETARecalculator interface {
	Handle(ctx context.Context, cmd RecalculateETACommand) (*delivery.ETA, error)
}

// RefreshActiveETAsResult summarizes one refresh pass.
type RefreshActiveETAsResult struct {
	Candidates int
	Refreshed  int
}

// RefreshActiveETAsCommandHandler recomputes the ETA of every in-flight delivery.
// Each delivery is refreshed in its own transaction, so one conflict does not cancel
// the rest of the pass.
type RefreshActiveETAsCommandHandler struct {
	uowFactory   TrackingUoWFactory
	recalculator ETARecalculator
}

func NewRefreshActiveETAsCommandHandler(
	uowFactory TrackingUoWFactory,
	recalculator ETARecalculator,
) RefreshActiveETAsCommandHandler {
	return RefreshActiveETAsCommandHandler{uowFactory: uowFactory, recalculator: recalculator}
}

// Handle runs one pass. The returned error joins the per-delivery failures; the result
// is meaningful even when an error is returned.
func (h RefreshActiveETAsCommandHandler) Handle(ctx context.Context) (RefreshActiveETAsResult, error) {
	ids, err := h.inFlight(ctx)
	if err != nil {
		return RefreshActiveETAsResult{}, err
	}

	result := RefreshActiveETAsResult{Candidates: len(ids)}
	var failures []error
	for _, id := range ids {
		if err = ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		cmd, err := NewRecalculateETACommand(id, nil)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		eta, err := h.recalculator.Handle(ctx, cmd)
		if err != nil {
			failures = append(failures, fmt.Errorf("delivery %s: %w", id, err))
			continue
		}
		if eta != nil {
			result.Refreshed++
		}
	}

	return result, errors.Join(failures...)
}

func (h RefreshActiveETAsCommandHandler) inFlight(ctx context.Context) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	deliveries, err := uow.DeliveryRepository().GetAllInFlight(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(deliveries))
	for _, d := range deliveries {
		ids = append(ids, d.ID())
	}
	return ids, nil
}
