package commands

import (
	"context"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/core/domain/services"
)

// ScoreMatchCommandHandler computes and upserts the candidate of one pair. Eligibility
// and the qualifying threshold are not applied here; they belong to ranking.
type ScoreMatchCommandHandler struct {
	uowFactory UoWFactory
	publisher  Publisher
	scorer     services.MatchScorer
}

func NewScoreMatchCommandHandler(uowFactory UoWFactory, publisher Publisher) ScoreMatchCommandHandler {
	return ScoreMatchCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		scorer:     services.NewMatchScorer(),
	}
}

// Handle returns the candidate as stored. Re-scoring a pair overwrites its scores and
// keeps its id and response state.
func (h ScoreMatchCommandHandler) Handle(ctx context.Context, cmd ScoreMatchCommand) (*matching.Candidate, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	a, err := uow.AnnouncementRepository().Get(ctx, cmd.AnnouncementID())
	if err != nil {
		return nil, err
	}
	d, err := uow.DelivererRepository().Get(ctx, cmd.DelivererID())
	if err != nil {
		return nil, err
	}

	candidate, err := h.scorer.Score(a, d, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	stored, err := uow.MatchRepository().Upsert(ctx, candidate)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	outbox := events.NewOutbox()
	outbox.CandidatesScored(1)
	h.publisher.Flush(ctx, outbox)

	return stored, nil
}
