package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// maxRetryAfter caps how long a server-supplied Retry-After may stall a
// render.
const maxRetryAfter = 30 * time.Second

// RetryableError marks a transient failure for [Retry]. After, when set,
// is the minimum wait the server asked for.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times. After a retryable failure it waits
// delay, or the error's After if longer, and doubles delay. Other errors
// return at once. The last error is returned, or ctx.Err() on cancellation.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		wait := max(delay, re.After)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return lastErr
}

// IsRetryable reports whether err is marked as transient.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. Unparseable or past values give zero.
func retryAfter(h string, now time.Time) time.Duration {
	if h == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(h); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(h); err == nil {
		d = t.Sub(now)
	}
	return min(max(d, 0), maxRetryAfter)
}
