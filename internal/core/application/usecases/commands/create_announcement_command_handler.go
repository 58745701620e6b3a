package commands

import (
	"context"
	"time"

	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/ports"
)

type CreateAnnouncementCommandHandler struct {
	uowFactory AnnouncementUoWFactory
	geocoder   ports.Geocoder
}

// NewCreateAnnouncementCommandHandler creates the handler. geocoder may be nil.
func NewCreateAnnouncementCommandHandler(
	uowFactory AnnouncementUoWFactory,
	geocoder ports.Geocoder,
) CreateAnnouncementCommandHandler {
	return CreateAnnouncementCommandHandler{uowFactory: uowFactory, geocoder: geocoder}
}

// Handle stores an OPEN announcement and returns it.
func (h CreateAnnouncementCommandHandler) Handle(
	ctx context.Context,
	cmd CreateAnnouncementCommand,
) (*announcement.Announcement, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	p := cmd.Params()

	pickup, err := h.address(ctx, p.PickupAddress, p.PickupLocation)
	if err != nil {
		return nil, err
	}
	dropoff, err := h.address(ctx, p.DropoffAddress, p.DropoffLocation)
	if err != nil {
		return nil, err
	}

	a, err := announcement.NewAnnouncement(announcement.Params{
		ID:             kernel.NewUUID(),
		ClientID:       p.ClientID,
		Title:          p.Title,
		Category:       p.Category,
		Pickup:         pickup,
		Dropoff:        dropoff,
		SuggestedPrice: p.SuggestedPrice,
		ScheduledDate:  p.ScheduledDate,
	}, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.AnnouncementRepository().Add(ctx, a); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

// address attaches coordinates to text: the supplied ones, else a geocoding result.
// Geocoding failures leave the address without coordinates.
func (h CreateAnnouncementCommandHandler) address(
	ctx context.Context,
	text string,
	location *kernel.Location,
) (kernel.Address, error) {
	if location == nil && h.geocoder != nil && text != "" {
		if resolved, err := h.geocoder.Geocode(ctx, text); err == nil {
			location = &resolved
		}
	}
	return kernel.NewAddress(text, location)
}
