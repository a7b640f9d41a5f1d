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

// groupRelayAggregationListener is shared by the group-relay and
// group-relay-confirmation signature aggregation listeners: same
// committer-gated ready-entries poll as
// RandomnessSignatureAggregationListener, different emitted topic.
type groupRelayAggregationListener struct {
	chainID    uint64
	selfAddr   types.Address
	groupCache *dal.GroupCache
	sigCache   *dal.SignatureResultCache
	clock      clockwork.Clock
	l          log.Logger
	publish    func(chainID uint64, indices []uint64)
}

func (n *groupRelayAggregationListener) iterate(_ context.Context) error {
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
	n.publish(n.chainID, indices)
	return nil
}

// GroupRelaySignatureAggregationListener emits
// ReadyToFulfillGroupRelayTask.
type GroupRelaySignatureAggregationListener struct {
	inner *groupRelayAggregationListener
}

func NewGroupRelaySignatureAggregationListener(
	chainID uint64, selfAddr types.Address, groupCache *dal.GroupCache, sigCache *dal.SignatureResultCache,
	eq *queue.EventQueue, clock clockwork.Clock, l log.Logger,
) *GroupRelaySignatureAggregationListener {
	named := l.Named("group_relay_signature_aggregation_listener")
	return &GroupRelaySignatureAggregationListener{&groupRelayAggregationListener{
		chainID, selfAddr, groupCache, sigCache, clock, named,
		func(chainID uint64, indices []uint64) {
			eq.Publish(event.ReadyToFulfillGroupRelayTask{ChainID: chainID, Tasks: indices})
		},
	}}
}

func (n *GroupRelaySignatureAggregationListener) Start(ctx context.Context) {
	runLoop(ctx, n.inner.clock, n.inner.l, "group_relay_signature_aggregation", time.Second, n.inner.iterate)
}

// GroupRelayConfirmationSignatureAggregationListener emits
// ReadyToFulfillGroupRelayConfirmationTask.
type GroupRelayConfirmationSignatureAggregationListener struct {
	inner *groupRelayAggregationListener
}

func NewGroupRelayConfirmationSignatureAggregationListener(
	chainID uint64, selfAddr types.Address, groupCache *dal.GroupCache, sigCache *dal.SignatureResultCache,
	eq *queue.EventQueue, clock clockwork.Clock, l log.Logger,
) *GroupRelayConfirmationSignatureAggregationListener {
	named := l.Named("group_relay_confirmation_signature_aggregation_listener")
	return &GroupRelayConfirmationSignatureAggregationListener{&groupRelayAggregationListener{
		chainID, selfAddr, groupCache, sigCache, clock, named,
		func(chainID uint64, indices []uint64) {
			eq.Publish(event.ReadyToFulfillGroupRelayConfirmationTask{ChainID: chainID, Tasks: indices})
		},
	}}
}

func (n *GroupRelayConfirmationSignatureAggregationListener) Start(ctx context.Context) {
	runLoop(ctx, n.inner.clock, n.inner.l, "group_relay_confirmation_signature_aggregation", time.Second, n.inner.iterate)
}
