package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/services"
	"ecodeli/internal/core/ports"
	"ecodeli/internal/pkg/errs"
)

// Notification categories and links sent to users.
const (
	CategoryDeliveryUpdate = "DELIVERY_UPDATE"
	CategoryMatchProposal  = "MATCH_PROPOSAL"

	clientDeliveryLink = "/client/deliveries/%s"
	delivererMatchLink = "/deliverer/matches/%s"
)

type trackingTx interface {
	DeliveryRepoFactory
	TrackingRepoFactory
	ProofRepoFactory
}

// statusFlow applies a status change and its side rules inside an open transaction.
// It is shared by every command that moves a delivery through its lifecycle.
type statusFlow struct {
	estimator services.ETAEstimator
	geocoder  ports.Geocoder
}

func newStatusFlow(geocoder ports.Geocoder) statusFlow {
	return statusFlow{estimator: services.NewETAEstimator(), geocoder: geocoder}
}

// transitionRequest describes one status change.
type transitionRequest struct {
	to      delivery.Status
	actor   kernel.Actor
	details delivery.TransitionDetails
	// proof is the DELIVERY checkpoint stored with a transition to DELIVERED.
	proof *delivery.Checkpoint
	// automatic marks proximity advances.
	automatic bool
}

// transition moves d to req.to and persists everything the change implies.
//
// Rules applied on top of Delivery.Transition:
//   - entering DELIVERED needs a DELIVERY checkpoint: req.proof when given, the stored
//     one, or one created here from the best known location
//   - entering a terminal status ends tracking
//   - entering IN_TRANSIT or NEARBY recomputes the ETA
//
// All validation happens before the first write. Side effects are queued on out.
func (f statusFlow) transition(
	ctx context.Context,
	tx trackingTx,
	d *delivery.Delivery,
	req transitionRequest,
	now time.Time,
	out *events.Outbox,
) (*delivery.StatusHistoryEntry, error) {
	to, actor, details := req.to, req.actor, req.details
	entry, err := d.Transition(to, actor, details, now)
	if err != nil {
		return nil, err
	}

	checkpoint := req.proof
	if to == delivery.Delivered && checkpoint == nil {
		checkpoint, err = f.deliveryCheckpoint(ctx, tx, d, actor, details, now)
		if err != nil {
			return nil, err
		}
	}

	if to.IsTerminal() {
		d.EndTracking(now)
	}

	var eta *delivery.ETA
	if to.IsInFlight() {
		if eta, err = f.estimate(ctx, tx, d, now, out); err != nil {
			return nil, err
		}
	}

	if err = tx.DeliveryRepository().Update(ctx, d); err != nil {
		return nil, err
	}
	if err = tx.TrackingRepository().AppendStatus(ctx, entry); err != nil {
		return nil, err
	}
	if checkpoint != nil {
		if err = tx.ProofRepository().AddCheckpoint(ctx, checkpoint); err != nil {
			return nil, err
		}
		out.Broadcast(d.ID(), delivery.NewCheckpointReachedEvent(checkpoint))
	}
	if eta != nil {
		if err = tx.TrackingRepository().SaveETA(ctx, eta); err != nil {
			return nil, err
		}
		out.Broadcast(d.ID(), delivery.NewETAUpdateEvent(eta))
		out.ETARecomputed(eta.CalculationType())
	}

	out.Broadcast(d.ID(), delivery.NewStatusUpdateEvent(entry))
	out.StatusChanged(entry.PreviousStatus(), entry.Status(), req.automatic)
	if entry.CustomerNotified() {
		out.Notify(statusNotification(d, entry))
	}

	return entry, nil
}

// deliveryCheckpoint returns nil when a DELIVERY checkpoint already exists, or builds
// one located at the reported position, the current position or the destination.
func (f statusFlow) deliveryCheckpoint(
	ctx context.Context,
	tx trackingTx,
	d *delivery.Delivery,
	actor kernel.Actor,
	details delivery.TransitionDetails,
	now time.Time,
) (*delivery.Checkpoint, error) {
	exists, err := tx.ProofRepository().HasCheckpoint(ctx, d.ID(), delivery.CheckpointDelivery)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	location, err := bestKnownLocation(d, details.Location)
	if err != nil {
		return nil, err
	}

	return delivery.NewCheckpoint(delivery.CheckpointParams{
		ID:          kernel.NewUUID(),
		DeliveryID:  d.ID(),
		Type:        delivery.CheckpointDelivery,
		Location:    location,
		Address:     d.Dropoff().Text(),
		ActualTime:  now,
		CompletedBy: actor.ID(),
		Notes:       details.Notes,
	})
}

// bestKnownLocation returns supplied, else the current position, else the destination.
func bestKnownLocation(d *delivery.Delivery, supplied *kernel.Location) (*kernel.Location, error) {
	location := supplied
	if location == nil {
		location = d.CurrentLocation()
	}
	if location == nil {
		location = d.Destination()
	}
	if location == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("location",
			errors.New("a delivery checkpoint needs a location and none is known"))
	}
	return location, nil
}

// estimate computes a new ETA and records it on d. It returns nil when the delivery
// has no position yet.
func (f statusFlow) estimate(
	ctx context.Context,
	tx trackingTx,
	d *delivery.Delivery,
	now time.Time,
	out *events.Outbox,
) (*delivery.ETA, error) {
	if d.CurrentLocation() == nil {
		return nil, nil
	}
	f.resolveDestination(ctx, d, out)

	positions, err := tx.TrackingRepository().GetPositionsSince(ctx, d.ID(), now.Add(-services.RecentPositionsWindow))
	if err != nil {
		return nil, err
	}
	previous, err := tx.TrackingRepository().GetETA(ctx, d.ID())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	eta, err := f.estimator.Estimate(d, positions, previous, now)
	if errors.Is(err, services.ErrPositionUnknown) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	d.SetEstimatedArrival(eta.EstimatedTime())
	return eta, nil
}

// resolveDestination geocodes the drop-off address when it has no coordinates.
// Failure leaves the destination unknown, which yields a historical estimate, and
// is queued on out as a degradation.
func (f statusFlow) resolveDestination(ctx context.Context, d *delivery.Delivery, out *events.Outbox) {
	if f.geocoder == nil || d.Destination() != nil {
		return
	}
	location, err := f.geocoder.Geocode(ctx, d.Dropoff().Text())
	if err != nil {
		out.Degraded(d.ID(), "drop-off address could not be geocoded", err)
		return
	}
	if err = d.AttachDestination(location); err != nil {
		out.Degraded(d.ID(), "geocoder returned an unusable destination", err)
	}
}

func statusNotification(d *delivery.Delivery, entry *delivery.StatusHistoryEntry) ports.Notification {
	title, message := "Delivery update", "Your delivery has been updated"
	switch entry.Status() {
	case delivery.Assigned:
		title, message = "Courier found", "A courier accepted your request and has been assigned"
	case delivery.PickedUp:
		title, message = "Parcel picked up", "Your parcel has been picked up"
	case delivery.InTransit:
		title, message = "On the way", "Your parcel is on its way to your address"
	case delivery.Nearby:
		title, message = "Courier nearby", "Your courier is close to your address"
	case delivery.Arrived:
		title, message = "Courier arrived", "Your courier has arrived at the delivery address"
	case delivery.Delivered:
		title, message = "Delivered", "Your parcel has been delivered"
	case delivery.NotDelivered:
		title, message = "Delivery failed", "The delivery could not be completed"
	case delivery.Cancelled:
		title, message = "Delivery cancelled", "The delivery has been cancelled"
	default:
	}
	if entry.Notes() != "" && (entry.Status() == delivery.NotDelivered || entry.Status() == delivery.Cancelled) {
		message = entry.Notes()
	}

	return ports.Notification{
		UserID:   d.ClientID(),
		Title:    title,
		Message:  message,
		Category: CategoryDeliveryUpdate,
		Link:     fmt.Sprintf(clientDeliveryLink, d.ID()),
		Data: map[string]any{
			"deliveryId": d.ID().String(),
			"status":     entry.Status().String(),
		},
	}
}
