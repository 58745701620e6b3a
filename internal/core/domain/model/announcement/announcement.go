package announcement

import (
	"errors"
	"strings"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
)

// ErrAnnouncementIsNotConstructed is returned when using an improperly initialized Announcement.
var ErrAnnouncementIsNotConstructed = errors.New("Announcement must be created via NewAnnouncement constructor")

// Announcement is the aggregate root for a client's delivery request.
//
// Business rules:
//   - Title and category are required; the category is stored upper-case
//   - A suggested price, when given, must not be negative
//   - Only an OPEN announcement can be matched or cancelled
type Announcement struct {
	id             kernel.UUID
	clientID       kernel.UUID
	title          string
	category       string
	pickup         kernel.Address
	dropoff        kernel.Address
	suggestedPrice *float64
	scheduledDate  *time.Time
	status         Status
	createdAt      time.Time
	isConstructed  bool
}

// Params groups the fields a client provides when posting an announcement.
type Params struct {
	ID             kernel.UUID
	ClientID       kernel.UUID
	Title          string
	Category       string
	Pickup         kernel.Address
	Dropoff        kernel.Address
	SuggestedPrice *float64
	ScheduledDate  *time.Time
}

// NewAnnouncement creates an OPEN announcement.
//
// Parameters:
//   - p: the announcement fields
//   - now: creation time
//
// Returns:
//   - *Announcement: the new aggregate
//   - error: aggregated validation errors
//
// Example:
//
//	a, err := announcement.NewAnnouncement(announcement.Params{
//	    ID: kernel.NewUUID(), ClientID: clientID, Title: "Books", Category: "PARCEL",
//	    Pickup: pickup, Dropoff: dropoff,
//	}, time.Now())
func NewAnnouncement(p Params, now time.Time) (*Announcement, error) {
	a := &Announcement{
		status:        Open,
		createdAt:     now,
		isConstructed: true,
	}
	if err := a.apply(p); err != nil {
		return nil, err
	}
	return a, nil
}

// RestoreAnnouncement rebuilds an announcement loaded from storage.
func RestoreAnnouncement(p Params, status Status, createdAt time.Time) (*Announcement, error) {
	a := &Announcement{createdAt: createdAt, isConstructed: true}
	if err := errors.Join(a.apply(p), status.Validate()); err != nil {
		return nil, err
	}
	a.status = status
	return a, nil
}

func (a *Announcement) apply(p Params) error {
	var problems []error
	problems = append(problems, p.ID.Validate(), p.ClientID.Validate())

	title := strings.TrimSpace(p.Title)
	if title == "" {
		problems = append(problems, errs.NewValueIsRequiredError("title"))
	}
	category := strings.ToUpper(strings.TrimSpace(p.Category))
	if category == "" {
		problems = append(problems, errs.NewValueIsRequiredError("category"))
	}
	if p.Pickup.Text() == "" {
		problems = append(problems, errs.NewValueIsRequiredError("pickupAddress"))
	}
	if p.Dropoff.Text() == "" {
		problems = append(problems, errs.NewValueIsRequiredError("deliveryAddress"))
	}
	if p.SuggestedPrice != nil && *p.SuggestedPrice < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("suggestedPrice", *p.SuggestedPrice, 0, "inf"))
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	a.id, a.clientID = p.ID, p.ClientID
	a.title, a.category = title, category
	a.pickup, a.dropoff = p.Pickup, p.Dropoff
	if p.SuggestedPrice != nil {
		v := *p.SuggestedPrice
		a.suggestedPrice = &v
	}
	if p.ScheduledDate != nil {
		v := *p.ScheduledDate
		a.scheduledDate = &v
	}
	return nil
}

// Validate ensures the announcement was built through a constructor.
func (a *Announcement) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAnnouncementIsNotConstructed
	}
	return nil
}

// ID returns the announcement identifier.
func (a *Announcement) ID() kernel.UUID { return a.id }

// ClientID returns the id of the posting client.
func (a *Announcement) ClientID() kernel.UUID { return a.clientID }

// Title returns the announcement title.
func (a *Announcement) Title() string { return a.title }

// Category returns the upper-case category.
func (a *Announcement) Category() string { return a.category }

// Pickup returns the pickup address.
func (a *Announcement) Pickup() kernel.Address { return a.pickup }

// Dropoff returns the dropoff address.
func (a *Announcement) Dropoff() kernel.Address { return a.dropoff }

// Status returns the lifecycle state.
func (a *Announcement) Status() Status { return a.status }

// CreatedAt returns the creation time.
func (a *Announcement) CreatedAt() time.Time { return a.createdAt }

// SuggestedPrice returns the client's price, or nil.
func (a *Announcement) SuggestedPrice() *float64 {
	if a.suggestedPrice == nil {
		return nil
	}
	v := *a.suggestedPrice
	return &v
}

// PriceOrZero returns the suggested price, or 0 when none was given.
func (a *Announcement) PriceOrZero() float64 {
	if a.suggestedPrice == nil {
		return 0
	}
	return *a.suggestedPrice
}

// ScheduledDate returns the requested delivery date, or nil.
func (a *Announcement) ScheduledDate() *time.Time {
	if a.scheduledDate == nil {
		return nil
	}
	v := *a.scheduledDate
	return &v
}

// IsOpen reports whether the announcement still accepts matches.
func (a *Announcement) IsOpen() bool { return a.status == Open }

// MarkMatched closes the announcement once a delivery exists for it.
func (a *Announcement) MarkMatched() error {
	next, err := a.status.move(Matched)
	if err != nil {
		return err
	}
	a.status = next
	return nil
}

// Cancel withdraws the announcement. Only its client or an admin may cancel.
func (a *Announcement) Cancel(actor kernel.Actor) error {
	if !actor.IsAdmin() && !actor.Is(a.clientID) {
		return errs.NewPermissionDeniedError(actor.ID().String(), "cancel announcement")
	}
	next, err := a.status.move(Cancelled)
	if err != nil {
		return err
	}
	a.status = next
	return nil
}
