package checkout

import (
	"context"
	"errors"

	"github.com/angelmondragon/salon-retail/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists checkout receipts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) error
	FindByIDAndSession(ctx context.Context, id uuid.UUID, sessionID string) (*models.Sale, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateSale inserts the sale header and its lines.
func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	if sale == nil {
		return errors.New("sale required")
	}
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) FindByIDAndSession(ctx context.Context, id uuid.UUID, sessionID string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_name ASC")
		}).
		Where("id = ? AND session_id = ?", id, sessionID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
