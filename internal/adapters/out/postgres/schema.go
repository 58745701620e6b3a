package postgres

import (
	"context"
	"fmt"
	"strings"

	"ecodeli/internal/adapters/out/postgres/announcementrepo"
	"ecodeli/internal/adapters/out/postgres/delivererrepo"
	"ecodeli/internal/adapters/out/postgres/deliveryrepo"
	"ecodeli/internal/adapters/out/postgres/matchingrepo"

	"gorm.io/gorm"
)

// Models returns every persisted model of the service.
func Models() []any {
	var models []any
	models = append(models, deliveryrepo.Models()...)
	models = append(models, delivererrepo.Models()...)
	models = append(models, announcementrepo.Models()...)
	models = append(models, matchingrepo.Models()...)
	return models
}

// Migrate creates or updates the schema of every table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Truncate empties every table. Tests call it between cases.
func Truncate(ctx context.Context, db *gorm.DB) error {
	tables := make([]string, 0, len(Models()))
	for _, m := range Models() {
		named, ok := m.(interface{ TableName() string })
		if !ok {
			return fmt.Errorf("model %T has no table name", m)
		}
		tables = append(tables, named.TableName())
	}
	return db.WithContext(ctx).Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " CASCADE").Error
}
