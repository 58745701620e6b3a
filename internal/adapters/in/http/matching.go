package http

import (
	"net/http"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/application/usecases/queries"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// CreateAnnouncement handles POST /api/v1/announcements.
func (s *Server) CreateAnnouncement(c echo.Context) error {
	var req CreateAnnouncementRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor := actorFrom(c)
	clientID := actor.ID()
	if req.ClientID != "" {
		id, err := kernel.UUIDFromString(req.ClientID)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("client_id", err)
		}
		clientID = id
	}
	pickup, err := req.PickupLocation.toDomain()
	if err != nil {
		return err
	}
	dropoff, err := req.DropoffLocation.toDomain()
	if err != nil {
		return err
	}
	cmd, err := commands.NewCreateAnnouncementCommand(commands.CreateAnnouncementParams{
		Actor:           actor,
		ClientID:        clientID,
		Title:           req.Title,
		Category:        req.Category,
		PickupAddress:   req.PickupAddress,
		PickupLocation:  pickup,
		DropoffAddress:  req.DropoffAddress,
		DropoffLocation: dropoff,
		SuggestedPrice:  req.SuggestedPrice,
		ScheduledDate:   req.ScheduledDate,
	})
	if err != nil {
		return err
	}

	a, err := s.h.CreateAnnouncement.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, announcementFromDomain(a))
}

// CancelAnnouncement handles DELETE /api/v1/announcements/:id.
func (s *Server) CancelAnnouncement(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewCancelAnnouncementCommand(id, actorFrom(c))
	if err != nil {
		return err
	}

	if err := s.h.CancelAnnouncement.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// FindMatches handles POST /api/v1/announcements/:id/matches?limit=: it scores
// every eligible deliverer and proposes the announcement to the best ones.
func (s *Server) FindMatches(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	actor := actorFrom(c)
	cmd, err := commands.NewFindBestMatchesCommand(id, &actor, limit)
	if err != nil {
		return err
	}

	candidates, err := s.h.FindBestMatches.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	response := make([]CandidateResponse, len(candidates))
	for i, candidate := range candidates {
		response[i] = candidateFromDomain(candidate)
	}
	return c.JSON(http.StatusOK, response)
}

// ScoreMatch handles PUT /api/v1/announcements/:id/matches/:delivererId. It
// recomputes the score of one pair and stores it as a pending candidate.
func (s *Server) ScoreMatch(c echo.Context) error {
	announcementID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	delivererID, err := pathUUID(c, "delivererId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewScoreMatchCommand(announcementID, delivererID)
	if err != nil {
		return err
	}

	candidate, err := s.h.ScoreMatch.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, candidateFromDomain(candidate))
}

// GetMatchCandidates handles GET /api/v1/announcements/:id/matches.
func (s *Server) GetMatchCandidates(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetMatchCandidatesQuery(id, actorFrom(c))
	if err != nil {
		return err
	}

	candidates, err := s.h.GetMatchCandidates.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]CandidateResponse, len(candidates))
	for i, candidate := range candidates {
		response[i] = candidateFromView(candidate)
	}
	return c.JSON(http.StatusOK, response)
}

// RespondToMatch handles POST /api/v1/matches/:id/response.
func (s *Server) RespondToMatch(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req RespondToMatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	decision, err := matching.ParseStatus(req.Decision)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRespondToMatchCommand(id, actorFrom(c), decision)
	if err != nil {
		return err
	}

	res, err := s.h.RespondToMatch.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, matchResponseFromResult(res))
}
