package cart

import (
	"context"

	"github.com/angelmondragon/salon-retail/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	ListBySession(ctx context.Context, sessionID string) ([]models.CartLine, error)
	FindBySessionAndProduct(ctx context.Context, sessionID string, productID uuid.UUID) (*models.CartLine, error)
	FindByIDAndSession(ctx context.Context, id uuid.UUID, sessionID string) (*models.CartLine, error)
	Create(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	Update(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}
