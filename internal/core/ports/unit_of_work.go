package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary spanning every repository.
// Client code must explicitly manage the transaction lifecycle; repositories obtained
// after Begin use the transaction.
type UnitOfWork interface {
	// Begin starts a new database transaction. Calling it twice is a no-op.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction. It returns an error when there is
	// no active transaction, which deferred rollbacks ignore.
	Rollback(ctx context.Context) error

	DeliveryRepository() DeliveryRepository
	TrackingRepository() TrackingRepository
	ProofRepository() ProofRepository
	DelivererRepository() DelivererRepository
	AnnouncementRepository() AnnouncementRepository
	MatchRepository() MatchRepository
}
