package delivery

import (
	"time"

	"ecodeli/internal/core/domain/model/kernel"
)

// EventType names the real-time events broadcast to the parties of a delivery.
type EventType string

const (
	EventLocationUpdate    EventType = "LOCATION_UPDATE"
	EventStatusUpdate      EventType = "STATUS_UPDATE"
	EventETAUpdate         EventType = "ETA_UPDATE"
	EventCheckpointReached EventType = "CHECKPOINT_REACHED"
)

// Event is a broadcast message about one delivery. Payload keys are part of the
// public wire format.
type Event struct {
	Type       EventType
	DeliveryID kernel.UUID
	OccurredAt time.Time
	Payload    map[string]any
}

func locationPayload(l *kernel.Location) map[string]any {
	if l == nil {
		return nil
	}
	return map[string]any{"latitude": l.Latitude(), "longitude": l.Longitude()}
}

// NewLocationUpdateEvent describes an accepted position ping.
func NewLocationUpdateEvent(p *TrackingPosition) Event {
	loc := p.Location()
	t := p.Telemetry()
	return Event{
		Type:       EventLocationUpdate,
		DeliveryID: p.DeliveryID(),
		OccurredAt: p.Timestamp(),
		Payload: map[string]any{
			"location":  locationPayload(&loc),
			"accuracy":  t.Accuracy,
			"heading":   t.Heading,
			"speed":     t.Speed,
			"timestamp": p.Timestamp(),
		},
	}
}

// NewStatusUpdateEvent describes a successful transition.
func NewStatusUpdateEvent(e *StatusHistoryEntry) Event {
	return Event{
		Type:       EventStatusUpdate,
		DeliveryID: e.DeliveryID(),
		OccurredAt: e.Timestamp(),
		Payload: map[string]any{
			"status":         e.Status().String(),
			"previousStatus": e.PreviousStatus().String(),
			"location":       locationPayload(e.Location()),
			"timestamp":      e.Timestamp(),
			"notes":          e.Notes(),
		},
	}
}

// NewETAUpdateEvent describes a recomputed estimate. delay is signed, in minutes.
func NewETAUpdateEvent(eta *ETA) Event {
	return Event{
		Type:       EventETAUpdate,
		DeliveryID: eta.DeliveryID(),
		OccurredAt: eta.CalculatedAt(),
		Payload: map[string]any{
			"estimatedTime":     eta.EstimatedTime(),
			"distanceRemaining": eta.DistanceRemainingKm(),
			"delay":             eta.DelayMinutes(),
		},
	}
}

// NewCheckpointReachedEvent describes a recorded checkpoint.
func NewCheckpointReachedEvent(c *Checkpoint) Event {
	return Event{
		Type:       EventCheckpointReached,
		DeliveryID: c.DeliveryID(),
		OccurredAt: c.ActualTime(),
		Payload: map[string]any{
			"checkpointId":   c.ID().String(),
			"checkpointType": string(c.Type()),
			"timestamp":      c.ActualTime(),
			"notes":          c.Notes(),
		},
	}
}
