// Package postgres provides the GORM-based unit of work over every repository of the
// delivery service.
//
// A unit of work wraps one database transaction. Repositories obtained after Begin
// run inside it; repositories obtained before Begin (or after Commit/Rollback) use the
// plain connection and autocommit each statement.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	d, err := uow.DeliveryRepository().Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	// ... mutate d, append history through uow.TrackingRepository() ...
//	if err := uow.DeliveryRepository().Update(ctx, d); err != nil {
//	    return err // a ConcurrentModificationError here is retryable
//	}
//
//	return uow.Commit(ctx)
//
// Each goroutine must use its own UnitOfWork instance.
package postgres

import (
	"context"

	"ecodeli/internal/adapters/out/postgres/announcementrepo"
	"ecodeli/internal/adapters/out/postgres/delivererrepo"
	"ecodeli/internal/adapters/out/postgres/deliveryrepo"
	"ecodeli/internal/adapters/out/postgres/matchingrepo"
	"ecodeli/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a fresh UnitOfWork with no transaction open.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one database transaction across repositories.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin opens the transaction. A second call while one is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx
	return nil
}

// Commit finalizes the transaction. It returns gorm.ErrInvalidTransaction when none is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. It returns gorm.ErrInvalidTransaction when none
// is open, which makes a deferred Rollback after Commit harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// DeliveryRepository returns the delivery repository bound to the current transaction.
func (uow *GormUnitOfWork) DeliveryRepository() ports.DeliveryRepository {
	return deliveryrepo.NewGormDeliveryRepository(uow.conn())
}

// TrackingRepository returns the status/position/ETA repository bound to the current transaction.
func (uow *GormUnitOfWork) TrackingRepository() ports.TrackingRepository {
	return deliveryrepo.NewGormTrackingRepository(uow.conn())
}

// ProofRepository returns the checkpoint/code/rating repository bound to the current transaction.
func (uow *GormUnitOfWork) ProofRepository() ports.ProofRepository {
	return deliveryrepo.NewGormProofRepository(uow.conn())
}

// DelivererRepository returns the deliverer repository bound to the current transaction.
func (uow *GormUnitOfWork) DelivererRepository() ports.DelivererRepository {
	return delivererrepo.NewGormDelivererRepository(uow.conn())
}

// AnnouncementRepository returns the announcement repository bound to the current transaction.
func (uow *GormUnitOfWork) AnnouncementRepository() ports.AnnouncementRepository {
	return announcementrepo.NewGormAnnouncementRepository(uow.conn())
}

// MatchRepository returns the match candidate repository bound to the current transaction.
func (uow *GormUnitOfWork) MatchRepository() ports.MatchRepository {
	return matchingrepo.NewGormMatchRepository(uow.conn())
}
