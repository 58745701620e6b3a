package delivery

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
)

// ErrStatusHistoryEntryIsNotConstructed is returned for zero-value history entries.
var ErrStatusHistoryEntryIsNotConstructed = errors.New(
	"StatusHistoryEntry must be created via NewStatusHistoryEntry constructor")

// StatusHistoryEntry is an immutable audit row written for every successful transition.
// Re-applying the same (previous, status) pair writes a new row; the log is not deduplicated.
type StatusHistoryEntry struct {
	id               kernel.UUID
	deliveryID       kernel.UUID
	status           Status
	previousStatus   Status
	timestamp        time.Time
	actorID          kernel.UUID
	location         *kernel.Location
	notes            string
	reason           string
	customerNotified bool
	isConstructed    bool
}

// NewStatusHistoryEntry validates and builds a history row.
// customerNotified records whether a client notification is scheduled for this change.
func NewStatusHistoryEntry(
	id, deliveryID kernel.UUID,
	status, previousStatus Status,
	actorID kernel.UUID,
	details TransitionDetails,
	customerNotified bool,
	timestamp time.Time,
) (*StatusHistoryEntry, error) {
	if err := errors.Join(
		id.Validate(),
		deliveryID.Validate(),
		actorID.Validate(),
		status.Validate(),
		previousStatus.Validate(),
	); err != nil {
		return nil, err
	}
	if details.Location != nil {
		if err := details.Location.Validate(); err != nil {
			return nil, err
		}
	}

	return &StatusHistoryEntry{
		id:               id,
		deliveryID:       deliveryID,
		status:           status,
		previousStatus:   previousStatus,
		timestamp:        timestamp,
		actorID:          actorID,
		location:         details.Location,
		notes:            details.Notes,
		reason:           details.Reason,
		customerNotified: customerNotified,
		isConstructed:    true,
	}, nil
}

// Validate ensures the entry was built through NewStatusHistoryEntry.
func (e *StatusHistoryEntry) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrStatusHistoryEntryIsNotConstructed
	}
	return nil
}

func (e *StatusHistoryEntry) ID() kernel.UUID            { return e.id }
func (e *StatusHistoryEntry) DeliveryID() kernel.UUID    { return e.deliveryID }
func (e *StatusHistoryEntry) Status() Status             { return e.status }
func (e *StatusHistoryEntry) PreviousStatus() Status     { return e.previousStatus }
func (e *StatusHistoryEntry) Timestamp() time.Time       { return e.timestamp }
func (e *StatusHistoryEntry) ActorID() kernel.UUID       { return e.actorID }
func (e *StatusHistoryEntry) Location() *kernel.Location { return e.location }
func (e *StatusHistoryEntry) Notes() string              { return e.notes }
func (e *StatusHistoryEntry) Reason() string             { return e.reason }
func (e *StatusHistoryEntry) CustomerNotified() bool     { return e.customerNotified }

// IsValidWalk reports whether entries, in order, form a walk of the adjacency table
// starting at Created.
func IsValidWalk(entries []*StatusHistoryEntry) bool {
	current := Created
	for _, e := range entries {
		if e.previousStatus != current || !current.CanTransitionTo(e.status) {
			return false
		}
		current = e.status
	}
	return true
}
