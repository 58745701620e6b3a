// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// persistence, then best-effort side effects once the transaction has committed.
package commands

import (
	"context"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each handler depends on the narrowest unit of work that covers its repositories.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	TrackingRepoFactory interface {
		TrackingRepository() ports.TrackingRepository
	}

	ProofRepoFactory interface {
		ProofRepository() ports.ProofRepository
	}

	DelivererRepoFactory interface {
		DelivererRepository() ports.DelivererRepository
	}

	AnnouncementRepoFactory interface {
		AnnouncementRepository() ports.AnnouncementRepository
	}

	MatchRepoFactory interface {
		MatchRepository() ports.MatchRepository
	}

	// TrackingUoW covers the delivery aggregate with its history, positions, ETA
	// and proofs. Used by every lifecycle and tracking command.
	TrackingUoW interface {
		TxManager
		DeliveryRepoFactory
		TrackingRepoFactory
		ProofRepoFactory
	}

	// TrackingUoWFactory creates new tracking unit of work instances.
	TrackingUoWFactory interface {
		Create() TrackingUoW
	}

	// DelivererUoW manages transactions for deliverer-only operations.
	DelivererUoW interface {
		TxManager
		DelivererRepoFactory
	}

	// DelivererUoWFactory creates new deliverer unit of work instances.
	DelivererUoWFactory interface {
		Create() DelivererUoW
	}

	// AnnouncementUoW manages transactions for announcement-only operations.
	AnnouncementUoW interface {
		TxManager
		AnnouncementRepoFactory
	}

	// AnnouncementUoWFactory creates new announcement unit of work instances.
	AnnouncementUoWFactory interface {
		Create() AnnouncementUoW
	}

	// UoW manages transactions across every aggregate. Used by matching and rating,
	// which coordinate announcements, deliverers, candidates and deliveries.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   candidate, err := uow.MatchRepository().Get(ctx, matchID)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		DeliveryRepoFactory
		TrackingRepoFactory
		ProofRepoFactory
		DelivererRepoFactory
		AnnouncementRepoFactory
		MatchRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}

	// Publisher flushes the side effects collected by a command after commit.
	Publisher interface {
		Flush(ctx context.Context, outbox *events.Outbox)
	}
)
