package commands

import (
	"context"
	"errors"
	"fmt"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
)

// OpenAnnouncementBatch bounds how many announcements one matching pass visits.
const OpenAnnouncementBatch = 100

// MatchFinder ranks and proposes deliverers for a single announcement.
type MatchFinder interface {
	Handle(ctx context.Context, cmd FindBestMatchesCommand) ([]*matching.Candidate, error)
}

// MatchOpenAnnouncementsResult summarizes one matching pass.
type MatchOpenAnnouncementsResult struct {
	Announcements int
	Proposed      int
}

// MatchOpenAnnouncementsCommandHandler runs FindBestMatches for every OPEN
// announcement on behalf of the scheduler. Announcements are matched one by one so
// a failure on one of them leaves the others untouched.
type MatchOpenAnnouncementsCommandHandler struct {
	uowFactory AnnouncementUoWFactory
	finder     MatchFinder
	limit      int
}

// NewMatchOpenAnnouncementsCommandHandler creates the handler. limit is the number
// of candidates kept per announcement; zero means DefaultMatchLimit.
func NewMatchOpenAnnouncementsCommandHandler(
	uowFactory AnnouncementUoWFactory,
	finder MatchFinder,
	limit int,
) MatchOpenAnnouncementsCommandHandler {
	return MatchOpenAnnouncementsCommandHandler{uowFactory: uowFactory, finder: finder, limit: limit}
}

// Handle runs one pass. The returned error joins the per-announcement failures.
func (h MatchOpenAnnouncementsCommandHandler) Handle(ctx context.Context) (MatchOpenAnnouncementsResult, error) {
	ids, err := h.open(ctx)
	if err != nil {
		return MatchOpenAnnouncementsResult{}, err
	}

	result := MatchOpenAnnouncementsResult{Announcements: len(ids)}
	var failures []error
	for _, id := range ids {
		if err = ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		cmd, err := NewFindBestMatchesCommand(id, nil, h.limit)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		candidates, err := h.finder.Handle(ctx, cmd)
		if err != nil {
			failures = append(failures, fmt.Errorf("announcement %s: %w", id, err))
			continue
		}
		result.Proposed += len(candidates)
	}

	return result, errors.Join(failures...)
}

func (h MatchOpenAnnouncementsCommandHandler) open(ctx context.Context) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	announcements, err := uow.AnnouncementRepository().GetAllOpen(ctx, OpenAnnouncementBatch)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(announcements))
	for _, a := range announcements {
		ids = append(ids, a.ID())
	}
	return ids, nil
}
