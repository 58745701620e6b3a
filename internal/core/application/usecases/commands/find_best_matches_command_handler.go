package commands

import (
	"context"
	"fmt"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/core/domain/services"
	"ecodeli/internal/core/ports"
	"ecodeli/internal/pkg/errs"
)

// FindBestMatchesCommandHandler scores every eligible deliverer against an open
// announcement and stores the best candidates.
//
// Deliverers that are inactive, unverified or already at capacity are skipped, the
// others are scored, candidates under matching.MinScore are dropped and the rest are
// ranked with services.CompareCandidates. Each deliverer is told about a proposal the
// first time it is stored; re-running the search only refreshes scores.
type FindBestMatchesCommandHandler struct {
	uowFactory UoWFactory
	publisher  Publisher
	scorer     services.MatchScorer
}

func NewFindBestMatchesCommandHandler(uowFactory UoWFactory, publisher Publisher) FindBestMatchesCommandHandler {
	return FindBestMatchesCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		scorer:     services.NewMatchScorer(),
	}
}

// Handle returns the stored candidates, best first.
//
// Returns:
//   - PermissionDeniedError when an actor other than the client or an admin asks
//   - InvalidTransitionError when the announcement is no longer open
func (h FindBestMatchesCommandHandler) Handle(
	ctx context.Context,
	cmd FindBestMatchesCommand,
) ([]*matching.Candidate, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()

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
	if actor := cmd.Actor(); actor != nil && !actor.IsAdmin() && !actor.Is(a.ClientID()) {
		return nil, errs.NewPermissionDeniedError(actor.ID().String(), "find matches for announcement "+a.ID().String())
	}
	if !a.IsOpen() {
		return nil, errs.NewInvalidTransitionErrorWithCause(a.Status().String(), announcement.Matched.String(),
			fmt.Errorf("announcement %s is not open", a.ID()))
	}

	contenders, err := h.contenders(ctx, uow)
	if err != nil {
		return nil, err
	}
	ranked, err := h.scorer.Rank(a, contenders, cmd.Limit(), now)
	if err != nil {
		return nil, err
	}

	outbox := events.NewOutbox()
	stored := make([]*matching.Candidate, 0, len(ranked))
	for _, candidate := range ranked {
		row, err := uow.MatchRepository().Upsert(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if row.ID() == candidate.ID() {
			outbox.Notify(proposalNotification(a, row))
		}
		stored = append(stored, row)
	}
	outbox.CandidatesScored(len(stored))

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	h.publisher.Flush(ctx, outbox)

	return stored, nil
}

func (h FindBestMatchesCommandHandler) contenders(ctx context.Context, uow UoW) ([]services.Contender, error) {
	deliverers, err := uow.DelivererRepository().GetAllEligible(ctx)
	if err != nil {
		return nil, err
	}

	contenders := make([]services.Contender, 0, len(deliverers))
	for _, d := range deliverers {
		active, err := uow.DeliveryRepository().CountActiveByDeliverer(ctx, d.ID())
		if err != nil {
			return nil, err
		}
		contenders = append(contenders, services.Contender{Deliverer: d, ActiveDeliveries: active})
	}
	return contenders, nil
}

func proposalNotification(a *announcement.Announcement, c *matching.Candidate) ports.Notification {
	return ports.Notification{
		UserID:   c.DelivererID(),
		Title:    "New delivery proposal",
		Message:  fmt.Sprintf("A delivery matching your profile is available: %s", a.Title()),
		Category: CategoryMatchProposal,
		Link:     fmt.Sprintf(delivererMatchLink, c.ID()),
		Data: map[string]any{
			"matchId":        c.ID().String(),
			"announcementId": a.ID().String(),
			"score":          c.TotalScore(),
		},
	}
}
