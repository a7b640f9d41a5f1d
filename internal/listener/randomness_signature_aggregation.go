package listener

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/queue"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// RandomnessSignatureAggregationListener polls the signature cache
// and, only if the local node is a committer for the current group,
// emits ReadyToFulfillRandomnessTask for every entry that has reached
// threshold and is not yet committed. Being the only emitter of this
// topic, and only emitting not-yet-committed entries, is half of the
// at-most-once fulfillment guarantee — the other half is the
// fulfillment handler's check-then-set commit.
type RandomnessSignatureAggregationListener struct {
	chainID    uint64
	selfAddr   types.Address
	groupCache *dal.GroupCache
	sigCache   *dal.SignatureResultCache
	eq         *queue.EventQueue
	clock      clockwork.Clock
	l          log.Logger
}

func NewRandomnessSignatureAggregationListener(
	chainID uint64,
	selfAddr types.Address,
	groupCache *dal.GroupCache,
	sigCache *dal.SignatureResultCache,
	eq *queue.EventQueue,
	clock clockwork.Clock,
	l log.Logger,
) *RandomnessSignatureAggregationListener {
	return &RandomnessSignatureAggregationListener{chainID, selfAddr, groupCache, sigCache, eq, clock, l.Named("randomness_signature_aggregation_listener")}
}

func (n *RandomnessSignatureAggregationListener) Start(ctx context.Context) {
	runLoop(ctx, n.clock, n.l, "randomness_signature_aggregation", time.Second, n.iterate)
}

func (n *RandomnessSignatureAggregationListener) iterate(_ context.Context) error {
	if !n.groupCache.IsCommitter(n.selfAddr) {
		return nil
	}

	ready := n.sigCache.GetReadyToCommit()
	if len(ready) == 0 {
		return nil
	}

	indices := make([]uint64, len(ready))
	for i, r := range ready {
		indices[i] = r.Index
	}

	n.eq.Publish(event.ReadyToFulfillRandomnessTask{ChainID: n.chainID, Tasks: indices})
	return nil
}
