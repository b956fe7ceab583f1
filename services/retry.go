package services

import (
	"context"
	"time"
)

// RetryConfig tunes the backoff applied around every store call. It is
// injected through constructors so tests can run with zero delays.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		Multiplier:   2,
		MaxDelay:     10 * time.Second,
	}
}

// Do runs op, retrying with exponential backoff on network-classified errors
// only. Non-retryable errors (not-found, permission-denied, validation) are
// returned after a single attempt. The last error propagates once MaxRetries
// retries are exhausted.
func (c RetryConfig) Do(ctx context.Context, op func() error) error {
	delay := c.InitialDelay
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr) || attempt >= c.MaxRetries {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * c.Multiplier)
		if c.MaxDelay > 0 && delay > c.MaxDelay {
			delay = c.MaxDelay
		}
	}
}
