package ports

import (
	"context"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
)

// MatchRepository stores match candidates keyed by (announcement, deliverer).
type MatchRepository interface {
	// Upsert stores the scores of candidate, overwriting the scores of an existing row
	// with the same key while keeping its id and response state. It returns the row
	// as stored.
	Upsert(ctx context.Context, candidate *matching.Candidate) (*matching.Candidate, error)

	// Get retrieves a candidate by id, or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*matching.Candidate, error)

	// SaveResponse persists an answered candidate only if the stored row is still
	// PENDING; otherwise it returns a ConcurrentModificationError.
	SaveResponse(ctx context.Context, candidate *matching.Candidate) error

	// ListByAnnouncement returns the candidates of an announcement, best first.
	ListByAnnouncement(ctx context.Context, announcementID kernel.UUID) ([]*matching.Candidate, error)
}
