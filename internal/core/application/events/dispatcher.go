package events

import (
	"context"
	"log/slog"

	"ecodeli/internal/core/ports"
)

// Side effect kinds reported to the Recorder.
const (
	KindBroadcast    = "broadcast"
	KindNotification = "notification"
)

// Recorder receives dispatch outcomes and the business observations of committed
// commands, typically to feed metrics.
type Recorder interface {
	Dispatched(kind, name string)
	Failed(kind, name string)

	Transitioned(from, to string, automatic bool)
	LocationIngested()
	ETARecomputed(calculationType string)
	CandidatesScored(n int)
	MatchResponded(decision string)
}

type nopRecorder struct{}

func (nopRecorder) Dispatched(string, string)         {}
func (nopRecorder) Failed(string, string)             {}
func (nopRecorder) Transitioned(string, string, bool) {}
func (nopRecorder) LocationIngested()                 {}
func (nopRecorder) ETARecomputed(string)              {}
func (nopRecorder) CandidatesScored(int)              {}
func (nopRecorder) MatchResponded(string)             {}

// Dispatcher flushes an Outbox to the broadcast and notification collaborators.
type Dispatcher struct {
	broadcaster ports.Broadcaster
	notifier    ports.Notifier
	recorder    Recorder
	logger      *slog.Logger
}

// NewDispatcher builds a dispatcher. A nil recorder disables outcome reporting.
func NewDispatcher(
	broadcaster ports.Broadcaster,
	notifier ports.Notifier,
	recorder Recorder,
	logger *slog.Logger,
) *Dispatcher {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Dispatcher{
		broadcaster: broadcaster,
		notifier:    notifier,
		recorder:    recorder,
		logger:      logger.With("component", "events_dispatcher"),
	}
}

// Flush delivers every queued side effect and empties the outbox.
// Errors are logged and counted, never returned. Observations are reported last.
func (d *Dispatcher) Flush(ctx context.Context, outbox *Outbox) {
	if outbox == nil {
		return
	}

	for _, b := range outbox.broadcasts {
		name := string(b.event.Type)
		if err := d.broadcaster.Publish(ctx, b.deliveryID, b.event); err != nil {
			d.recorder.Failed(KindBroadcast, name)
			d.logger.ErrorContext(ctx, "broadcast failed",
				"delivery_id", b.deliveryID.String(), "event", name, "error", err)
			continue
		}
		d.recorder.Dispatched(KindBroadcast, name)
	}

	for _, n := range outbox.notifications {
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.recorder.Failed(KindNotification, n.Category)
			d.logger.ErrorContext(ctx, "notification failed",
				"user_id", n.UserID.String(), "category", n.Category, "error", err)
			continue
		}
		d.recorder.Dispatched(KindNotification, n.Category)
	}

	for _, observe := range outbox.observations {
		observe(d.recorder)
	}

	for _, p := range outbox.degradations {
		d.logger.WarnContext(ctx, p.reason, "delivery_id", p.deliveryID.String(), "error", p.err)
	}

	outbox.broadcasts = nil
	outbox.notifications = nil
	outbox.observations = nil
	outbox.degradations = nil
}
