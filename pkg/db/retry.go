package db

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/salon-retail/pkg/config"
	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy re-attempts store round-trips that failed for transient reasons.
type RetryPolicy struct {
	MaxAttempts uint
	Delay       time.Duration
	// OnRetry observes each failed attempt before the next one starts.
	OnRetry func(err error, wait time.Duration)
}

// DefaultRetryPolicy is two attempts half a second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Delay: 500 * time.Millisecond}
}

// RetryPolicyFromConfig maps the env surface onto a policy.
func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{MaxAttempts: cfg.MaxAttempts, Delay: cfg.Delay}
}

// Do runs op until it succeeds, returns a permanent error, or the attempt
// budget is spent. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Delay)),
		backoff.WithMaxTries(attempts),
	}
	if p.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(p.OnRetry))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := op(ctx); err != nil {
			if !IsTransient(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, opts...)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	return err
}
