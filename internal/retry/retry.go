// Package retry provides bounded exponential backoff for provider calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	maxAttempts    = 3
	initialBackoff = 1 * time.Second
	backoffMulti   = 2
	maxBackoff     = 10 * time.Second
)

// TransientError signals a provider failure expected to resolve on retry,
// such as rate limiting or a server-side error.
type TransientError struct {
	StatusCode int
	Body       string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// SleepFunc waits for d or until ctx is cancelled. Tests inject a no-op.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Do executes fn, retrying with exponential backoff while it returns a
// *TransientError. Any other error is returned immediately. A nil sleep
// uses Sleep.
func Do(ctx context.Context, sleep SleepFunc, fn func() error) error {
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		var te *TransientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = err

		if attempt < maxAttempts {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff *= time.Duration(backoffMulti)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	return lastErr
}
