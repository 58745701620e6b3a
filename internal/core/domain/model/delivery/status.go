package delivery

import (
	"fmt"
	"slices"
	"strings"

	"ecodeli/internal/pkg/errs"
)

// Status is the physical lifecycle state of a delivery.
//
// State transitions:
//
//	Created ──> Assigned ──> PendingPickup ──> PickedUp ──> InTransit ──> Nearby ──> Arrived
//	                              ▲                             ▲            │          │
//	                              │                             └────────────┘          ▼
//	                         Rescheduled <── NotDelivered <──────────────── AttemptDelivery ──> Delivered
//	                                              │
//	                                              └──> Returned
//
// Every non-terminal state may also move to Cancelled. Delivered, Returned and
// Cancelled are terminal.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota
	Created
	Assigned
	PendingPickup
	PickedUp
	InTransit
	Nearby
	Arrived
	AttemptDelivery
	Delivered
	NotDelivered
	Rescheduled
	Returned
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "UNKNOWN",
		Created:         "CREATED",
		Assigned:        "ASSIGNED",
		PendingPickup:   "PENDING_PICKUP",
		PickedUp:        "PICKED_UP",
		InTransit:       "IN_TRANSIT",
		Nearby:          "NEARBY",
		Arrived:         "ARRIVED",
		AttemptDelivery: "ATTEMPT_DELIVERY",
		Delivered:       "DELIVERED",
		NotDelivered:    "NOT_DELIVERED",
		Rescheduled:     "RESCHEDULED",
		Returned:        "RETURNED",
		Cancelled:       "CANCELLED",
	}
}

// getAllowedTransitions is the lifecycle adjacency table. A pair missing here is invalid.
func getAllowedTransitions() map[Status][]Status {
	//nolint:exhaustive // Unknown has no transitions
	return map[Status][]Status{
		Created:         {Assigned, Cancelled},
		Assigned:        {PendingPickup, Cancelled},
		PendingPickup:   {PickedUp, Cancelled},
		PickedUp:        {InTransit, Cancelled},
		InTransit:       {Nearby, Cancelled},
		Nearby:          {Arrived, InTransit, Cancelled},
		Arrived:         {AttemptDelivery, Cancelled},
		AttemptDelivery: {Delivered, NotDelivered, Cancelled},
		NotDelivered:    {Rescheduled, Returned, Cancelled},
		Rescheduled:     {PendingPickup, Cancelled},
		Delivered:       {},
		Returned:        {},
		Cancelled:       {},
	}
}

// ParseStatus converts a status name such as "IN_TRANSIT" (case-insensitive).
func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// AllStatuses returns every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		Created, Assigned, PendingPickup, PickedUp, InTransit, Nearby, Arrived,
		AttemptDelivery, Delivered, NotDelivered, Rescheduled, Returned, Cancelled,
	}
}

// Validate checks that s is one of the thirteen lifecycle states.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted and wire name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Returned || s == Cancelled
}

// NextStatuses returns a copy of the statuses reachable in one step.
func (s Status) NextStatuses() []Status {
	return slices.Clone(getAllowedTransitions()[s])
}

// CanTransitionTo reports whether (s -> next) is in the adjacency table.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(getAllowedTransitions()[s], next)
}

// ValidateTransition returns an InvalidTransitionError when (s -> next) is not allowed.
//
// Example:
//
//	if err := delivery.Assigned.ValidateTransition(delivery.Delivered); err != nil {
//	    // errors.Is(err, errs.ErrInvalidTransition) == true
//	}
func (s Status) ValidateTransition(next Status) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if !s.CanTransitionTo(next) {
		return errs.NewInvalidTransitionError(s.String(), next.String())
	}
	return nil
}

// IsInFlight reports whether the courier is on the road towards the recipient,
// which is when live ETA recomputation applies.
func (s Status) IsInFlight() bool {
	return s == InTransit || s == Nearby
}
