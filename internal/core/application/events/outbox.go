// Package events collects the side effects of a command (broadcasts and notifications)
// and dispatches them once the command's transaction has committed.
//
// Dispatch is best-effort: a failing broadcaster or notifier is logged and counted but
// never turns a committed change into an error.
package events

import (
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/core/ports"
)

type observation func(Recorder)

type broadcast struct {
	deliveryID kernel.UUID
	event      delivery.Event
}

// degradation is a recoverable problem a command worked around.
type degradation struct {
	deliveryID kernel.UUID
	reason     string
	err        error
}

// Outbox buffers side effects in the order they were produced. It is not safe for
// concurrent use; each command owns its outbox.
type Outbox struct {
	broadcasts    []broadcast
	notifications []ports.Notification
	observations  []observation
	degradations  []degradation
}

// NewOutbox returns an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Broadcast queues a live event for a delivery.
func (o *Outbox) Broadcast(deliveryID kernel.UUID, event delivery.Event) {
	o.broadcasts = append(o.broadcasts, broadcast{deliveryID: deliveryID, event: event})
}

// Notify queues a user notification.
func (o *Outbox) Notify(n ports.Notification) {
	o.notifications = append(o.notifications, n)
}

// Events returns the queued broadcast events in order.
func (o *Outbox) Events() []delivery.Event {
	out := make([]delivery.Event, 0, len(o.broadcasts))
	for _, b := range o.broadcasts {
		out = append(out, b.event)
	}
	return out
}

// Notifications returns the queued notifications in order.
func (o *Outbox) Notifications() []ports.Notification {
	return append([]ports.Notification(nil), o.notifications...)
}

// StatusChanged records a committed transition. automatic marks proximity advances.
func (o *Outbox) StatusChanged(from, to delivery.Status, automatic bool) {
	o.observations = append(o.observations, func(r Recorder) {
		r.Transitioned(from.String(), to.String(), automatic)
	})
}

// LocationIngested records an accepted position ping.
func (o *Outbox) LocationIngested() {
	o.observations = append(o.observations, func(r Recorder) { r.LocationIngested() })
}

// ETARecomputed records a stored estimate.
func (o *Outbox) ETARecomputed(calculationType delivery.CalculationType) {
	o.observations = append(o.observations, func(r Recorder) { r.ETARecomputed(string(calculationType)) })
}

// CandidatesScored records n stored match candidates.
func (o *Outbox) CandidatesScored(n int) {
	o.observations = append(o.observations, func(r Recorder) { r.CandidatesScored(n) })
}

// MatchResponded records a deliverer's answer to a proposal.
func (o *Outbox) MatchResponded(decision matching.Decision) {
	o.observations = append(o.observations, func(r Recorder) { r.MatchResponded(decision.String()) })
}

// Degraded records that the command carried on without something it wanted, for
// example a geocoded destination. The dispatcher logs it as a warning.
func (o *Outbox) Degraded(deliveryID kernel.UUID, reason string, err error) {
	o.degradations = append(o.degradations, degradation{deliveryID: deliveryID, reason: reason, err: err})
}

// Degradations returns the reasons recorded with Degraded, in order.
func (o *Outbox) Degradations() []string {
	out := make([]string, 0, len(o.degradations))
	for _, d := range o.degradations {
		out = append(out, d.reason)
	}
	return out
}

// Len returns the number of queued side effects.
func (o *Outbox) Len() int {
	return len(o.broadcasts) + len(o.notifications)
}
