package places

import (
	"context"
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/log"
)

// RetryPolicy defines the retry behavior for a single upstream call:
// a bounded number of attempts with exponential backoff between them.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy returns the standard schedule: three attempts total,
// sleeping 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Backoff returns the sleep duration after the given zero-based attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= p.BackoffMultiplier
	}
	return time.Duration(backoff)
}

// Execute runs fn up to MaxAttempts times, retrying only transient errors
// (timeouts, connectivity loss, upstream rate limits). Non-transient errors
// and context cancellation fail immediately. The last error is returned when
// all attempts are exhausted.
func (p RetryPolicy) Execute(ctx context.Context, logger *log.Logger, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if core.IsCancelled(lastErr) || !core.IsTransient(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		backoff := p.Backoff(attempt)
		if logger != nil {
			logger.Debugf("attempt %d failed (%v), retrying in %v", attempt+1, lastErr, backoff)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
