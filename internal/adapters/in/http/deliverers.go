package http

import (
	"net/http"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// RegisterDeliverer handles POST /api/v1/deliverers.
func (s *Server) RegisterDeliverer(c echo.Context) error {
	var req RegisterDelivererRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor := actorFrom(c)
	delivererID := actor.ID()
	if req.ID != "" {
		id, err := kernel.UUIDFromString(req.ID)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("id", err)
		}
		delivererID = id
	}
	location, err := req.Location.toDomain()
	if err != nil {
		return err
	}
	zones := make([]commands.RouteZoneInput, 0, len(req.RouteZones))
	for _, z := range req.RouteZones {
		center, err := z.Center.toDomain()
		if err != nil {
			return err
		}
		zones = append(zones, commands.RouteZoneInput{Center: *center, RadiusKm: z.RadiusKm})
	}
	cmd, err := commands.NewRegisterDelivererCommand(commands.RegisterDelivererParams{
		Actor:               actor,
		DelivererID:         delivererID,
		Name:                req.Name,
		Verified:            req.Verified,
		Location:            location,
		PreferredCategories: req.PreferredCategories,
		RouteZones:          zones,
	})
	if err != nil {
		return err
	}

	d, err := s.h.RegisterDeliverer.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, delivererFromDomain(d))
}

// UpdateDelivererLocation handles PUT /api/v1/deliverers/:id/location.
func (s *Server) UpdateDelivererLocation(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateDelivererLocationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	location, err := req.Location.toDomain()
	if err != nil {
		return err
	}
	cmd, err := commands.NewUpdateDelivererLocationCommand(id, actorFrom(c), location)
	if err != nil {
		return err
	}
	return s.updateDeliverer(c, cmd)
}

// AddAvailability handles POST /api/v1/deliverers/:id/availability.
func (s *Server) AddAvailability(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req AvailabilityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}
	cmd, err := commands.NewAddDelivererAvailabilityCommand(id, actorFrom(c), req.Start, req.End, isAvailable)
	if err != nil {
		return err
	}
	return s.updateDeliverer(c, cmd)
}

// AddRouteZone handles POST /api/v1/deliverers/:id/route-zones.
func (s *Server) AddRouteZone(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req RouteZoneDTO
	if err := bind(c, &req); err != nil {
		return err
	}
	center, err := req.Center.toDomain()
	if err != nil {
		return err
	}
	cmd, err := commands.NewAddDelivererRouteZoneCommand(id, actorFrom(c), *center, req.RadiusKm)
	if err != nil {
		return err
	}
	return s.updateDeliverer(c, cmd)
}

func (s *Server) updateDeliverer(c echo.Context, cmd commands.UpdateDelivererProfileCommand) error {
	d, err := s.h.UpdateDelivererProfile.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, delivererFromDomain(d))
}
