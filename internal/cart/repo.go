package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/salon-retail/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for session cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListBySession returns the session's lines in the order they were added.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	var rows []models.CartLine
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBySessionAndProduct loads the single line a session may hold for a product.
func (r *Repository) FindBySessionAndProduct(ctx context.Context, sessionID string, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindByIDAndSession returns a line restricted to the provided session.
func (r *Repository) FindByIDAndSession(ctx context.Context, id uuid.UUID, sessionID string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", id, sessionID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Create inserts a new line.
func (r *Repository) Create(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// Update saves the provided line.
func (r *Repository) Update(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if err := r.db.WithContext(ctx).Omit("Product").Save(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteBySession removes every line of the session and reports how many went.
func (r *Repository) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

// DeleteExpiredSessions removes every line of sessions that have a line
// untouched since cutoff. Such sessions can no longer present a valid token.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	stale := r.db.Model(&models.CartLine{}).
		Select("session_id").
		Where("updated_at < ?", cutoff)
	res := r.db.WithContext(ctx).
		Where("session_id IN (?)", stale).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}
