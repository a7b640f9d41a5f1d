// Package listener implements the per-chain, per-event-source loops
// that watch chain state and caches for new work: each consults a
// chain client and/or caches, and emits an event onto the queue when
// new work or new readiness appears. Every listener shares the same
// shape — retry-wrapped iteration, then a short sleep — described
// once here and reused by each concrete type.
package listener

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/retry"
)

// Listener is started on the FixedScheduler and runs until its
// context is cancelled.
type Listener interface {
	Start(ctx context.Context)
}

const retryInterval = 2 * time.Second

// runLoop is the shared iterate-retry-sleep shape every listener
// uses: one call to iterate per pass, retried forever at a fixed
// interval on error (never skipping ahead), then a sleep before the
// next pass.
func runLoop(ctx context.Context, clock clockwork.Clock, l log.Logger, name string, sleep time.Duration, iterate func(context.Context) error) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := retry.Unbounded(ctx, retryInterval, func() error {
			return iterate(ctx)
		}, func(err error, attempt int) {
			l.Error("listener iteration failed, retrying", "listener", name, "attempt", attempt, "err", err)
		})
		if err != nil && ctx.Err() == nil {
			l.Error("listener iteration permanently failed", "listener", name, "err", err)
		}

		select {
		case <-clock.After(sleep):
		case <-ctx.Done():
			return
		}
	}
}
