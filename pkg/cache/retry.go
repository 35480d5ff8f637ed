package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork is the generic transport failure used by sources without a
// more specific error.
var ErrNetwork = errors.New("network error")

// RetryableError marks a source failure as transient: timeouts, dropped
// connections and overloaded upstreams.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries a call while it fails with retryable errors.
type Backoff struct {
	// Attempts is the total number of calls, including the first.
	Attempts int

	// Delay is the wait before the second call. It doubles after every
	// retry, up to MaxDelay when that is set.
	Delay    time.Duration
	MaxDelay time.Duration

	// OnRetry, when set, is called with the failed attempt number (from 1)
	// before each wait.
	OnRetry func(attempt int, err error)
}

// DefaultBackoff makes three calls, one and two seconds apart.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 8 * time.Second}

// Do calls fn until it succeeds, fails with a non-retryable error or runs
// out of attempts. A done ctx aborts the wait and returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(1, b.Attempts)
	delay := b.Delay
	for i := 1; ; i++ {
		err := fn()
		if err == nil || !IsRetryable(err) || i >= attempts {
			return err
		}
		if b.OnRetry != nil {
			b.OnRetry(i, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
}

// RetryWithBackoff runs fn under DefaultBackoff.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}
