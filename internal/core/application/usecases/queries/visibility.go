package queries

import (
	"context"
	"database/sql"
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// authorizeViewer loads the parties of a delivery and rejects actors that are
// neither its client, its deliverer nor an admin.
func authorizeViewer(ctx context.Context, db *gorm.DB, deliveryID kernel.UUID, actor kernel.Actor, action string) error {
	var clientID uuid.UUID
	var delivererID uuid.NullUUID

	row := db.WithContext(ctx).Raw(
		`SELECT client_id, deliverer_id FROM deliveries WHERE id = ?`, deliveryID.Bytes(),
	).Row()
	if err := row.Scan(&clientID, &delivererID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NewObjectNotFoundError("delivery", deliveryID.String())
		}
		return err
	}

	if actor.IsAdmin() {
		return nil
	}
	client, err := kernel.UUIDFromBytes(clientID[:])
	if err != nil {
		return err
	}
	parties := []*kernel.UUID{&client}
	if delivererID.Valid {
		deliverer, err := kernel.UUIDFromBytes(delivererID.UUID[:])
		if err != nil {
			return err
		}
		parties = append(parties, &deliverer)
	}
	if !actor.IsOneOf(parties...) {
		return errs.NewPermissionDeniedError(actor.ID().String(), action)
	}
	return nil
}

// nullableUUID converts a nullable uuid column.
func nullableUUID(v uuid.NullUUID) (*kernel.UUID, error) {
	if !v.Valid {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(v.UUID[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// nullableLocation converts a nullable coordinate pair.
func nullableLocation(lat, lng *float64) (*kernel.Location, error) {
	if lat == nil || lng == nil {
		return nil, nil
	}
	loc, err := kernel.NewLocation(*lat, *lng)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}
