package queries

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

const (
	DefaultPositionHistoryLimit = 100
	MaxPositionHistoryLimit     = 1000
)

var ErrGetPositionHistoryQueryIsNotConstructed = errors.New(
	"GetPositionHistoryQuery must be created via NewGetPositionHistoryQuery constructor",
)

// GetPositionHistoryQuery lists the pings of a delivery inside an optional time
// range, oldest first. Both bounds are inclusive.
type GetPositionHistoryQuery struct {
	deliveryID kernel.UUID
	actor      kernel.Actor
	from       *time.Time
	to         *time.Time
	limit      int
	guard      guard.ConstructorGuard
}

// NewGetPositionHistoryQuery rejects an inverted range. A limit of zero means
// DefaultPositionHistoryLimit; larger limits are capped at MaxPositionHistoryLimit.
func NewGetPositionHistoryQuery(
	deliveryID kernel.UUID,
	actor kernel.Actor,
	from, to *time.Time,
	limit int,
) (GetPositionHistoryQuery, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate()); err != nil {
		return GetPositionHistoryQuery{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return GetPositionHistoryQuery{}, errs.NewValueIsInvalidErrorWithCause(
			"to", errors.New("range end is before its start"))
	}
	switch {
	case limit < 0:
		return GetPositionHistoryQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, MaxPositionHistoryLimit)
	case limit == 0:
		limit = DefaultPositionHistoryLimit
	case limit > MaxPositionHistoryLimit:
		limit = MaxPositionHistoryLimit
	}

	return GetPositionHistoryQuery{
		deliveryID: deliveryID,
		actor:      actor,
		from:       from,
		to:         to,
		limit:      limit,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetPositionHistoryQuery) DeliveryID() kernel.UUID { return q.deliveryID }
func (q GetPositionHistoryQuery) Actor() kernel.Actor     { return q.actor }
func (q GetPositionHistoryQuery) From() *time.Time        { return q.from }
func (q GetPositionHistoryQuery) To() *time.Time          { return q.to }
func (q GetPositionHistoryQuery) Limit() int              { return q.limit }

func (q GetPositionHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetPositionHistoryQueryIsNotConstructed)
}
