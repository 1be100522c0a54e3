package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/salon-retail/internal/cart"
	"gorm.io/gorm"
)

type storeRunner interface {
	Run(ctx context.Context, fn func(db *gorm.DB) error) error
}

// CartExpiryJobParams configure NewCartExpiryJob.
type CartExpiryJobParams struct {
	Store     storeRunner
	IdleAfter time.Duration
}

// NewCartExpiryJob removes carts whose session token can no longer be valid.
func NewCartExpiryJob(params CartExpiryJobParams) (*CartExpiryJob, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if params.IdleAfter <= 0 {
		return nil, fmt.Errorf("idle window must be positive")
	}
	return &CartExpiryJob{
		store:     params.Store,
		idleAfter: params.IdleAfter,
		now:       time.Now,
	}, nil
}

// CartExpiryJob deletes lines of sessions idle for longer than the token TTL.
type CartExpiryJob struct {
	store     storeRunner
	idleAfter time.Duration
	now       func() time.Time
}

func (j *CartExpiryJob) Name() string { return "cart-expiry" }

func (j *CartExpiryJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.idleAfter)
	var removed int64
	err := j.store.Run(ctx, func(db *gorm.DB) error {
		rows, err := cart.NewRepository(db).DeleteExpiredSessions(ctx, cutoff)
		if err != nil {
			return err
		}
		removed = rows
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cart expiry: %w", err)
	}
	return removed, nil
}
