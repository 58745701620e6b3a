package http

import (
	"net/http"
	"strconv"
	"time"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/application/usecases/queries"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// bind decodes the body into req and runs its validation tags.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// GetActiveDeliveries handles GET /api/v1/deliveries/active.
func (s *Server) GetActiveDeliveries(c echo.Context) error {
	query, err := queries.NewGetActiveDeliveriesQuery(actorFrom(c))
	if err != nil {
		return err
	}

	deliveries, err := s.h.GetActiveDeliveries.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]ActiveDeliveryResponse, len(deliveries))
	for i, d := range deliveries {
		response[i] = activeDeliveryFromView(d)
	}
	return c.JSON(http.StatusOK, response)
}

// GetTracking handles GET /api/v1/deliveries/:id/tracking.
func (s *Server) GetTracking(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetDeliveryTrackingQuery(id, actorFrom(c))
	if err != nil {
		return err
	}

	view, err := s.h.GetDeliveryTracking.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trackingFromView(view))
}

// GetStatusHistory handles GET /api/v1/deliveries/:id/history.
func (s *Server) GetStatusHistory(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetStatusHistoryQuery(id, actorFrom(c))
	if err != nil {
		return err
	}

	entries, err := s.h.GetStatusHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]StatusChangeResponse, len(entries))
	for i, e := range entries {
		response[i] = statusChangeFromView(e)
	}
	return c.JSON(http.StatusOK, response)
}

// GetPositions handles GET /api/v1/deliveries/:id/positions?from=&to=&limit=.
// Bounds are RFC 3339 timestamps.
func (s *Server) GetPositions(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	from, err := queryTime(c, "from")
	if err != nil {
		return err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	query, err := queries.NewGetPositionHistoryQuery(id, actorFrom(c), from, to, limit)
	if err != nil {
		return err
	}

	positions, err := s.h.GetPositionHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]PositionResponse, len(positions))
	for i, p := range positions {
		response[i] = positionFromView(p)
	}
	return c.JSON(http.StatusOK, response)
}

// TransitionStatus handles POST /api/v1/deliveries/:id/status.
func (s *Server) TransitionStatus(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req TransitionStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	status, err := delivery.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	location, err := req.Location.toDomain()
	if err != nil {
		return err
	}
	cmd, err := commands.NewTransitionStatusCommand(id, actorFrom(c), status, location, req.Notes, req.Reason)
	if err != nil {
		return err
	}

	entry, err := s.h.TransitionStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusChangeFromEntry(entry))
}

// IngestLocation handles POST /api/v1/deliveries/:id/location, the deliverer's GPS ping.
func (s *Server) IngestLocation(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req LocationPingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	location, err := kernel.NewLocation(*req.Latitude, *req.Longitude)
	if err != nil {
		return err
	}
	telemetry := delivery.Telemetry{
		Accuracy: req.Accuracy,
		Heading:  req.Heading,
		Speed:    req.Speed,
		Altitude: req.Altitude,
	}
	cmd, err := commands.NewIngestLocationCommand(id, actorFrom(c), location, telemetry, req.Timestamp)
	if err != nil {
		return err
	}

	res, err := s.h.IngestLocation.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, locationPingFromResult(res))
}

// RecalculateETA handles POST /api/v1/deliveries/:id/eta. Without a known
// position there is nothing to estimate and the answer is 204.
func (s *Server) RecalculateETA(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	actor := actorFrom(c)
	cmd, err := commands.NewRecalculateETACommand(id, &actor)
	if err != nil {
		return err
	}

	eta, err := s.h.RecalculateETA.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	if eta == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, etaFromDomain(eta))
}

// CreateCheckpoint handles POST /api/v1/deliveries/:id/checkpoints.
func (s *Server) CreateCheckpoint(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req CheckpointRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	checkpointType, err := delivery.ParseCheckpointType(req.Type)
	if err != nil {
		return err
	}
	location, err := req.Location.toDomain()
	if err != nil {
		return err
	}
	cmd, err := commands.NewCreateCheckpointCommand(commands.CreateCheckpointParams{
		DeliveryID:       id,
		Actor:            actorFrom(c),
		Type:             checkpointType,
		Location:         location,
		Address:          req.Address,
		PlannedTime:      req.PlannedTime,
		Proofs:           delivery.Proofs{PhotoURL: req.PhotoURL, SignatureURL: req.SignatureURL},
		ConfirmationCode: req.ConfirmationCode,
		Notes:            req.Notes,
		Metadata:         req.Metadata,
	})
	if err != nil {
		return err
	}

	checkpoint, err := s.h.CreateCheckpoint.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, checkpointFromDomain(checkpoint))
}

// GenerateConfirmationCode handles POST /api/v1/deliveries/:id/confirmation-code.
func (s *Server) GenerateConfirmationCode(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewGenerateConfirmationCodeCommand(id, actorFrom(c))
	if err != nil {
		return err
	}

	code, err := s.h.GenerateConfirmationCode.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ConfirmationCodeResponse{
		DeliveryID: code.DeliveryID().String(),
		Code:       code.Code(),
		IssuedAt:   code.IssuedAt(),
		ExpiresAt:  code.ExpiresAt(),
	})
}

// ConfirmDelivery handles POST /api/v1/deliveries/:id/confirm.
func (s *Server) ConfirmDelivery(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req ConfirmDeliveryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	location, err := req.Location.toDomain()
	if err != nil {
		return err
	}
	cmd, err := commands.NewConfirmDeliveryCommand(commands.ConfirmDeliveryParams{
		DeliveryID: id,
		Actor:      actorFrom(c),
		Code:       req.Code,
		Proofs:     delivery.Proofs{PhotoURL: req.PhotoURL, SignatureURL: req.SignatureURL},
		Notes:      req.Notes,
		Location:   location,
	})
	if err != nil {
		return err
	}

	entry, err := s.h.ConfirmDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusChangeFromEntry(entry))
}

// RateDelivery handles POST /api/v1/deliveries/:id/ratings.
func (s *Server) RateDelivery(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req RateDeliveryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewRateDeliveryCommand(id, actorFrom(c), req.Score, req.Comment)
	if err != nil {
		return err
	}

	rating, err := s.h.RateDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, RatingResponse{
		ID:         rating.ID().String(),
		DeliveryID: rating.DeliveryID().String(),
		RaterID:    rating.RaterID().String(),
		TargetID:   rating.TargetID().String(),
		Score:      rating.Score(),
		Comment:    rating.Comment(),
		CreatedAt:  rating.CreatedAt(),
	})
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return &t, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return n, nil
}
