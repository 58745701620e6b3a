package http

import (
	"context"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/application/usecases/queries"
	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/matching"
)

// Handler is the shape shared by the command and query handlers the server calls.
type Handler[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// CancelAnnouncementHandler is the one command handler with no result.
type CancelAnnouncementHandler interface {
	Handle(ctx context.Context, cmd commands.CancelAnnouncementCommand) error
}

// Handlers holds every use case exposed over HTTP.
type Handlers struct {
	// Command handlers
	TransitionStatus         Handler[commands.TransitionStatusCommand, *delivery.StatusHistoryEntry]
	IngestLocation           Handler[commands.IngestLocationCommand, commands.IngestLocationResult]
	RecalculateETA           Handler[commands.RecalculateETACommand, *delivery.ETA]
	CreateCheckpoint         Handler[commands.CreateCheckpointCommand, *delivery.Checkpoint]
	GenerateConfirmationCode Handler[commands.GenerateConfirmationCodeCommand, *delivery.ConfirmationCode]
	ConfirmDelivery          Handler[commands.ConfirmDeliveryCommand, *delivery.StatusHistoryEntry]
	RateDelivery             Handler[commands.RateDeliveryCommand, *delivery.Rating]
	CreateAnnouncement       Handler[commands.CreateAnnouncementCommand, *announcement.Announcement]
	CancelAnnouncement       CancelAnnouncementHandler
	ScoreMatch               Handler[commands.ScoreMatchCommand, *matching.Candidate]
	FindBestMatches          Handler[commands.FindBestMatchesCommand, []*matching.Candidate]
	RespondToMatch           Handler[commands.RespondToMatchCommand, commands.RespondToMatchResult]
	RegisterDeliverer        Handler[commands.RegisterDelivererCommand, *deliverer.Deliverer]
	UpdateDelivererProfile   Handler[commands.UpdateDelivererProfileCommand, *deliverer.Deliverer]

	// Query handlers
	GetDeliveryTracking Handler[queries.GetDeliveryTrackingQuery, *queries.GetDeliveryTrackingQueryResponse]
	GetStatusHistory    Handler[queries.GetStatusHistoryQuery, []queries.GetStatusHistoryQueryResponse]
	GetPositionHistory  Handler[queries.GetPositionHistoryQuery, []queries.PositionView]
	GetActiveDeliveries Handler[queries.GetActiveDeliveriesQuery, []queries.GetActiveDeliveriesQueryResponse]
	GetMatchCandidates  Handler[queries.GetMatchCandidatesQuery, []queries.GetMatchCandidatesQueryResponse]
}

// Server translates HTTP requests into commands and queries and their results
// back into JSON. It holds no state of its own.
type Server struct {
	h Handlers
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(h Handlers) *Server {
	return &Server{h: h}
}
