package cache

import (
	"context"
	"errors"
	"time"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
)

// RetryableError marks a transient failure, typically a lost connection to
// Redis, that [RetryWithBackoff] should try again.
type RetryableError struct{ Err error }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err's chain holds a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// networkError reports a failed round trip to a backend as a retryable
// NETWORK_ERROR.
func networkError(err error, op string) error {
	return Retryable(mterrors.Wrap(mterrors.ErrCodeNetwork, err, "cache %s", op))
}

// Backoff schedule for [RetryWithBackoff]: retryAttempts tries, waiting
// retryDelay after the first failure and doubling each time.
var (
	retryAttempts = 3
	retryDelay    = time.Second
)

// RetryWithBackoff calls fn until it succeeds, returns a non-retryable
// error, or the attempts run out. The last error is returned. Waiting stops
// early when ctx is done.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
