package utils

import (
	"context"
	"time"
)

// RetryWithBackoff runs fn up to attempts times, doubling the delay after
// each failure. The last error is returned if all attempts fail. Context
// cancellation aborts the wait between attempts.
func RetryWithBackoff(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := baseDelay

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
