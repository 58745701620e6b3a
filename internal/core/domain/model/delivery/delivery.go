package delivery

import (
	"errors"
	"fmt"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not created through
	// NewDelivery or RestoreDelivery.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")
)

// Delivery is the aggregate root of the tracking domain. It owns the lifecycle status,
// the live position of the courier and the tracking session, and it is the single
// place where status transitions are authorized and validated.
//
// Delivery follows these invariants:
//   - status is always one of the thirteen lifecycle states
//   - the deliverer is set before the status leaves Created
//   - status only changes along the adjacency table of Status
//   - once tracking has ended it never resumes
//   - history, positions and checkpoints referencing a delivery cannot outlive it
//
// Concurrency is handled by the repository through the version number: an update
// succeeds only if the stored version still equals Version().
type Delivery struct {
	id             kernel.UUID
	announcementID kernel.UUID
	clientID       kernel.UUID
	delivererID    *kernel.UUID

	status Status

	pickup  kernel.Address
	dropoff kernel.Address

	currentLocation    *kernel.Location
	lastLocationUpdate *time.Time
	estimatedArrival   *time.Time
	actualArrival      *time.Time
	scheduledDate      *time.Time

	trackingEnabled   bool
	trackingStartedAt *time.Time
	trackingEndedAt   *time.Time

	price        float64
	trackingCode string
	createdAt    time.Time
	version      int64

	isConstructed bool
}

// TransitionDetails carries the optional context recorded with a status change.
type TransitionDetails struct {
	Location *kernel.Location
	Notes    string
	Reason   string
}

// NewDelivery creates a delivery in Created status with tracking enabled and a fresh
// tracking code.
//
// Parameters:
//   - id: identifier of the delivery
//   - announcementID: the announcement this delivery fulfils
//   - clientID: the client who posted the announcement
//   - delivererID: the courier, may be nil until assignment
//   - pickup, dropoff: the two ends of the trip
//   - price: agreed price, must not be negative
//   - scheduledDate: optional planned delivery date, used by historical ETAs
//   - now: creation time
//
// Returns:
//   - *Delivery: the created delivery
//   - error: joined validation errors
//
// Example:
//
//	d, err := delivery.NewDelivery(kernel.NewUUID(), announcementID, clientID, &courierID,
//	    pickup, dropoff, 12.5, nil, time.Now())
//	if err != nil {
//	    return err
//	}
//	entry, err := d.Transition(delivery.Assigned, courier, delivery.TransitionDetails{}, time.Now())
func NewDelivery(
	id, announcementID, clientID kernel.UUID,
	delivererID *kernel.UUID,
	pickup, dropoff kernel.Address,
	price float64,
	scheduledDate *time.Time,
	now time.Time,
) (*Delivery, error) {
	d := &Delivery{
		status:          Created,
		trackingEnabled: true,
		trackingCode:    NewTrackingCode(now),
		createdAt:       now,
		scheduledDate:   copyTime(scheduledDate),
		isConstructed:   true,
	}

	if err := errors.Join(
		d.setIDs(id, announcementID, clientID, delivererID),
		d.setAddresses(pickup, dropoff),
		d.setPrice(price),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreParams is the persisted state of a Delivery.
type RestoreParams struct {
	ID                 kernel.UUID
	AnnouncementID     kernel.UUID
	ClientID           kernel.UUID
	DelivererID        *kernel.UUID
	Status             Status
	Pickup             kernel.Address
	Dropoff            kernel.Address
	CurrentLocation    *kernel.Location
	LastLocationUpdate *time.Time
	EstimatedArrival   *time.Time
	ActualArrival      *time.Time
	ScheduledDate      *time.Time
	TrackingEnabled    bool
	TrackingStartedAt  *time.Time
	TrackingEndedAt    *time.Time
	Price              float64
	TrackingCode       string
	CreatedAt          time.Time
	Version            int64
}

// RestoreDelivery rebuilds a Delivery read back from storage.
// It validates the same invariants as NewDelivery plus status consistency.
func RestoreDelivery(p RestoreParams) (*Delivery, error) {
	d := &Delivery{
		status:             p.Status,
		currentLocation:    p.CurrentLocation,
		lastLocationUpdate: copyTime(p.LastLocationUpdate),
		estimatedArrival:   copyTime(p.EstimatedArrival),
		actualArrival:      copyTime(p.ActualArrival),
		scheduledDate:      copyTime(p.ScheduledDate),
		trackingEnabled:    p.TrackingEnabled,
		trackingStartedAt:  copyTime(p.TrackingStartedAt),
		trackingEndedAt:    copyTime(p.TrackingEndedAt),
		trackingCode:       p.TrackingCode,
		createdAt:          p.CreatedAt,
		version:            p.Version,
		isConstructed:      true,
	}

	if err := errors.Join(
		d.setIDs(p.ID, p.AnnouncementID, p.ClientID, p.DelivererID),
		d.setAddresses(p.Pickup, p.Dropoff),
		d.setPrice(p.Price),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}
	if p.Status != Created && p.DelivererID == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("delivererId",
			fmt.Errorf("status %s requires a deliverer", p.Status))
	}
	if p.TrackingEndedAt != nil && p.TrackingEnabled {
		return nil, errs.NewValueIsInvalidErrorWithCause("trackingEnabled",
			errors.New("tracking cannot be enabled after it has ended"))
	}

	return d, nil
}

// Validate ensures the Delivery was built through a constructor.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

// ID returns the delivery identifier.
func (d *Delivery) ID() kernel.UUID { return d.id }

// AnnouncementID returns the announcement this delivery fulfils.
func (d *Delivery) AnnouncementID() kernel.UUID { return d.announcementID }

// ClientID returns the client who receives the parcel.
func (d *Delivery) ClientID() kernel.UUID { return d.clientID }

// DelivererID returns the assigned courier, or nil.
func (d *Delivery) DelivererID() *kernel.UUID {
	if d.delivererID == nil {
		return nil
	}
	id := *d.delivererID
	return &id
}

// Status returns the current lifecycle status.
func (d *Delivery) Status() Status { return d.status }

// Pickup returns the pickup address.
func (d *Delivery) Pickup() kernel.Address { return d.pickup }

// Dropoff returns the delivery address.
func (d *Delivery) Dropoff() kernel.Address { return d.dropoff }

// CurrentLocation returns the last position reported by the courier, or nil.
func (d *Delivery) CurrentLocation() *kernel.Location {
	if d.currentLocation == nil {
		return nil
	}
	loc := *d.currentLocation
	return &loc
}

// LastLocationUpdate returns when CurrentLocation was reported.
func (d *Delivery) LastLocationUpdate() *time.Time { return copyTime(d.lastLocationUpdate) }

// EstimatedArrival returns the live ETA, or nil if none was computed.
func (d *Delivery) EstimatedArrival() *time.Time { return copyTime(d.estimatedArrival) }

// ActualArrival returns when the courier reached Arrived.
func (d *Delivery) ActualArrival() *time.Time { return copyTime(d.actualArrival) }

// ScheduledDate returns the planned delivery date, if any.
func (d *Delivery) ScheduledDate() *time.Time { return copyTime(d.scheduledDate) }

// TrackingEnabled reports whether location pings are accepted.
func (d *Delivery) TrackingEnabled() bool { return d.trackingEnabled }

// TrackingStartedAt returns the time of the first accepted ping.
func (d *Delivery) TrackingStartedAt() *time.Time { return copyTime(d.trackingStartedAt) }

// TrackingEndedAt returns when tracking was closed for good.
func (d *Delivery) TrackingEndedAt() *time.Time { return copyTime(d.trackingEndedAt) }

// Price returns the agreed price.
func (d *Delivery) Price() float64 { return d.price }

// TrackingCode returns the public tracking code.
func (d *Delivery) TrackingCode() string { return d.trackingCode }

// CreatedAt returns the creation time.
func (d *Delivery) CreatedAt() time.Time { return d.createdAt }

// Version returns the persisted version this instance was read at.
func (d *Delivery) Version() int64 { return d.version }

// CommitVersion records that the current state was stored at the next version.
// Repositories call it after a successful conditional update.
func (d *Delivery) CommitVersion() {
	d.version++
}

// Destination returns the geocoded drop-off point, or nil when it is unknown.
func (d *Delivery) Destination() *kernel.Location {
	if !d.dropoff.IsGeocoded() {
		return nil
	}
	return d.dropoff.Location()
}

// AttachDestination stores coordinates resolved for the drop-off address.
func (d *Delivery) AttachDestination(location kernel.Location) error {
	addr, err := kernel.NewAddress(d.dropoff.Text(), &location)
	if err != nil {
		return err
	}
	d.dropoff = addr
	return nil
}

// IsParticipant reports whether actor is the assigned deliverer, the client or an admin.
func (d *Delivery) IsParticipant(actor kernel.Actor) bool {
	return actor.IsAdmin() || actor.IsOneOf(&d.clientID, d.delivererID)
}

// AuthorizeParticipant returns PermissionDenied unless actor is the assigned
// deliverer, the client or an admin.
func (d *Delivery) AuthorizeParticipant(actor kernel.Actor, action string) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !d.IsParticipant(actor) {
		return errs.NewPermissionDeniedError(actor.ID().String(), action)
	}
	return nil
}

// AuthorizeDeliverer returns PermissionDenied unless actor is the assigned deliverer,
// or, when allowAdmin is set, an admin.
func (d *Delivery) AuthorizeDeliverer(actor kernel.Actor, action string, allowAdmin bool) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if allowAdmin && actor.IsAdmin() {
		return nil
	}
	if !actor.IsOneOf(d.delivererID) {
		return errs.NewPermissionDeniedError(actor.ID().String(), action)
	}
	return nil
}

// Transition moves the delivery to status to and returns the history entry to append.
//
// This method enforces the following business rules:
//   - the actor is the assigned deliverer, the client or an admin
//   - (current -> to) is listed in the adjacency table
//   - a deliverer is set before entering Assigned
//   - entering Arrived records the actual arrival time
//
// Nothing is modified when an error is returned. Callers are responsible for the
// side rules that need other aggregates, such as the DELIVERY checkpoint that must
// accompany Delivered.
//
// Example:
//
//	entry, err := d.Transition(delivery.PickedUp, courier, delivery.TransitionDetails{Notes: "parcel ok"}, now)
//	if errors.Is(err, errs.ErrInvalidTransition) {
//	    // wrong step in the lifecycle
//	}
func (d *Delivery) Transition(
	to Status,
	actor kernel.Actor,
	details TransitionDetails,
	now time.Time,
) (*StatusHistoryEntry, error) {
	if err := d.AuthorizeParticipant(actor, "update delivery status"); err != nil {
		return nil, err
	}
	if err := d.status.ValidateTransition(to); err != nil {
		return nil, err
	}
	if to == Assigned && d.delivererID == nil {
		return nil, errs.NewValueIsRequiredError("delivererId")
	}

	entry, err := NewStatusHistoryEntry(
		kernel.NewUUID(), d.id, to, d.status, actor.ID(), details,
		!actor.Is(d.clientID), now,
	)
	if err != nil {
		return nil, err
	}

	d.status = to
	if to == Arrived {
		arrival := now
		d.actualArrival = &arrival
	}

	return entry, nil
}

// RecordPosition stores a courier ping as the current position.
//
// Only the assigned deliverer may report positions, and only while tracking is enabled.
// The first accepted ping opens the tracking session.
func (d *Delivery) RecordPosition(actor kernel.Actor, location kernel.Location, at time.Time) error {
	if err := d.AuthorizeDeliverer(actor, "update delivery location", false); err != nil {
		return err
	}
	if err := location.Validate(); err != nil {
		return err
	}
	if !d.trackingEnabled {
		return errs.NewTrackingDisabledError(d.id.String())
	}

	loc := location
	ts := at
	d.currentLocation = &loc
	d.lastLocationUpdate = &ts
	if d.trackingStartedAt == nil {
		started := at
		d.trackingStartedAt = &started
	}
	return nil
}

// SetEstimatedArrival records the live ETA.
func (d *Delivery) SetEstimatedArrival(at time.Time) {
	d.estimatedArrival = &at
}

// EndTracking closes the tracking session permanently.
// Calling it again keeps the original end time.
func (d *Delivery) EndTracking(at time.Time) {
	d.trackingEnabled = false
	if d.trackingEndedAt == nil {
		d.trackingEndedAt = &at
	}
}

func (d *Delivery) setIDs(id, announcementID, clientID kernel.UUID, delivererID *kernel.UUID) error {
	if err := errors.Join(id.Validate(), announcementID.Validate(), clientID.Validate()); err != nil {
		return err
	}
	if delivererID != nil {
		if err := delivererID.Validate(); err != nil {
			return err
		}
		deliverer := *delivererID
		d.delivererID = &deliverer
	}
	d.id = id
	d.announcementID = announcementID
	d.clientID = clientID
	return nil
}

func (d *Delivery) setAddresses(pickup, dropoff kernel.Address) error {
	if pickup.Text() == "" {
		return errs.NewValueIsRequiredError("pickupAddress")
	}
	if dropoff.Text() == "" {
		return errs.NewValueIsRequiredError("deliveryAddress")
	}
	d.pickup = pickup
	d.dropoff = dropoff
	return nil
}

func (d *Delivery) setPrice(price float64) error {
	if price < 0 {
		return errs.NewValueIsOutOfRangeError("price", price, 0, "unbounded")
	}
	d.price = price
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
