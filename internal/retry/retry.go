// Package retry centralizes the fixed-interval retry policy used by
// listeners (unbounded) and handlers (bounded) alike, so the backoff
// shape lives in exactly one place. Built on cenkalti/backoff/v4.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Notify is called after each failed attempt that will be retried,
// before sleeping, so the caller can log without the retry helper
// taking a logger dependency. The final failed attempt is not
// notified; its error is returned instead.
type Notify func(err error, attempt int)

// Bounded retries f up to maxAttempts times with a fixed interval
// between attempts, matching the "3 attempts, 2s fixed interval" used
// by committer pushes and chain submissions.
func Bounded(ctx context.Context, interval time.Duration, maxAttempts int, f func() error, notify Notify) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(maxAttempts-1)), ctx)
	attempt := 0
	return backoff.RetryNotify(f, b, func(err error, _ time.Duration) {
		attempt++
		if notify != nil {
			notify(err, attempt)
		}
	})
}

// Unbounded retries f forever at a fixed interval until it succeeds
// or ctx is cancelled. Listeners use this to wrap one iteration of
// work; a persistent failure is logged on every attempt and never
// aborts the listener loop.
func Unbounded(ctx context.Context, interval time.Duration, f func() error, notify Notify) error {
	b := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	attempt := 0
	return backoff.RetryNotify(f, b, func(err error, _ time.Duration) {
		attempt++
		if notify != nil {
			notify(err, attempt)
		}
	})
}
