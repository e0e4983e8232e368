package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/squaremap/pkg/httputil"
)

// ErrNetwork marks a backend that could not be reached. Redis errors of
// this kind are retried and then surface to the caller, which treats them
// as a miss.
var ErrNetwork = errors.New("cache backend unreachable")

// RetryableError is the transient-failure marker shared with the icon
// fetcher, so both back off the same way.
type RetryableError = httputil.RetryableError

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err was marked by [Retryable].
func IsRetryable(err error) bool { return httputil.IsRetryable(err) }

const retryAttempts = 3

// retryBase is the first backoff delay; tests shorten it.
var retryBase = time.Second

// RetryWithBackoff runs fn up to three times, doubling the delay after each
// transient failure.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, retryAttempts, retryBase, fn)
}
