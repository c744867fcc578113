// Package retry retries operations that fail with transient errors, waiting
// an exponentially growing backoff between attempts.
//
//	err := retry.Do(ctx, retry.Conflicts(), func() error {
//	    return insert(ctx)
//	}, isConflict)
//
// Backoff for attempt n (1-based retry count) is InitialBackoff * 2^(n-1),
// capped at MaxBackoff, plus jitter growing linearly with n. Cancelling ctx
// during a backoff ends the loop with ctx.Err().
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config defines the retry behavior.
type Config struct {
	// MaxRetries bounds the number of calls to fn. Values below 1 mean one call.
	MaxRetries int
	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the wait. Zero means no cap.
	MaxBackoff time.Duration
	// Jitter in [0,1] adds up to Jitter*backoff on the last attempt.
	Jitter float64
}

// Conflicts is the policy used for DuckDB write-write conflicts between
// concurrent unit writers.
func Conflicts() Config {
	return Config{
		MaxRetries:     10,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
		Jitter:         0.1,
	}
}

// ShouldRetryFunc reports whether err is transient. A nil func retries every error.
type ShouldRetryFunc func(error) bool

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. The final error wraps the last failure.
func Do(ctx context.Context, cfg Config, fn func() error, shouldRetry ShouldRetryFunc) error {
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff(cfg, attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("failed after %d retries: %w", attempts, lastErr)
}

func backoff(cfg Config, attempt int) time.Duration {
	d := cfg.InitialBackoff << (attempt - 1)
	if d < cfg.InitialBackoff || (cfg.MaxBackoff > 0 && d > cfg.MaxBackoff) {
		// Overflowed or past the cap.
		d = cfg.MaxBackoff
	}
	if cfg.Jitter > 0 && cfg.MaxRetries > 0 {
		d += time.Duration(float64(d) * cfg.Jitter * float64(attempt) / float64(cfg.MaxRetries))
	}
	return d
}
