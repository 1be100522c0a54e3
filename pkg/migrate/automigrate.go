package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/salon-retail/pkg/db/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&models.Product{},
		&models.CartLine{},
		&models.Sale{},
		&models.SaleLine{},
	}
}

// AutoMigrate creates or extends the schema from the gorm models. It backs the
// local sqlite store, which has no goose history.
func AutoMigrate(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
