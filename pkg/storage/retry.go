package storage

import (
	"context"
	"errors"
	"time"
)

// Connection retry defaults for network backends.
const (
	DefaultConnectAttempts = 3
	DefaultConnectDelay    = 200 * time.Millisecond
)

// RetryableError marks a failure worth another attempt, such as a refused
// connection or a ping timeout. [Retry] gives up immediately on any other
// error.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times, doubling delay after each retryable
// failure. It returns the last error when every attempt fails, or ctx.Err()
// if ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// WithRetry returns an opener that retries open on retryable failures.
func WithRetry(open Opener, attempts int, delay time.Duration) Opener {
	return func(ctx context.Context) (Store, error) {
		var store Store
		err := Retry(ctx, attempts, delay, func() error {
			s, err := open(ctx)
			if err != nil {
				return err
			}
			store = s
			return nil
		})
		return store, err
	}
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
