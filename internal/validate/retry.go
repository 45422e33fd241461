package validate

import (
	"context"
	"log/slog"
	"time"
)

// RetryConfig controls the transient-failure retry wrapper.
type RetryConfig struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // wait grows linearly: BaseDelay * attempt
}

// DefaultRetryConfig matches the external-lookup hardening used throughout
// the pipeline.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
}

// Retry calls fn up to rc.MaxAttempts times with linear backoff between
// attempts. Every error is treated as transient at this layer; callers
// that care about error classes do it above or below this wrapper.
// On exhaustion the last error is returned; callers are expected to
// treat it as "validation unavailable", not as a hard failure.
// A non-positive MaxAttempts falls back to DefaultRetryConfig so fn
// always runs at least once.
func Retry[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if rc.MaxAttempts <= 0 {
		rc = DefaultRetryConfig
	}

	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < rc.MaxAttempts {
			wait := rc.BaseDelay * time.Duration(attempt)
			slog.Debug("retrying", slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}
