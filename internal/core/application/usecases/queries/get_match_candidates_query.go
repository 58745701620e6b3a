package queries

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/pkg/guard"
)

var ErrGetMatchCandidatesQueryIsNotConstructed = errors.New(
	"GetMatchCandidatesQuery must be created via NewGetMatchCandidatesQuery constructor",
)

// GetMatchCandidatesQuery lists the scored deliverers of an announcement, best
// first. Only the announcement's client and admins may read it.
type GetMatchCandidatesQuery struct {
	announcementID kernel.UUID
	actor          kernel.Actor
	guard          guard.ConstructorGuard
}

func NewGetMatchCandidatesQuery(announcementID kernel.UUID, actor kernel.Actor) (GetMatchCandidatesQuery, error) {
	if err := errors.Join(announcementID.Validate(), actor.Validate()); err != nil {
		return GetMatchCandidatesQuery{}, err
	}
	return GetMatchCandidatesQuery{announcementID: announcementID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetMatchCandidatesQuery) AnnouncementID() kernel.UUID { return q.announcementID }
func (q GetMatchCandidatesQuery) Actor() kernel.Actor         { return q.actor }

func (q GetMatchCandidatesQuery) Validate() error {
	return q.guard.Validate(ErrGetMatchCandidatesQueryIsNotConstructed)
}

// GetMatchCandidatesQueryResponse is one ranked candidate with its factor scores.
type GetMatchCandidatesQueryResponse struct {
	ID               kernel.UUID
	DelivererID      kernel.UUID
	DelivererName    string
	Scores           matching.Scores
	TotalScore       float64
	DistanceKm       *float64
	EstimatedMinutes *int
	IsInRoute        bool
	IsAvailable      bool
	Status           matching.Status
	CalculatedAt     time.Time
	RespondedAt      *time.Time
}
