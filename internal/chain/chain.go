// Package chain wires one chain's caches, listeners, subscribers and
// handlers together into one "what talks to what" assembly. A Chain is
// built once per chain id this node serves (the main chain plus zero
// or more adapter chains) and shares the node's single group, BLS
// core and event queue with every other chain.
package chain

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/handler"
	"github.com/bls-tss-network/randcast-node/internal/listener"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/metrics"
	"github.com/bls-tss-network/randcast-node/internal/queue"
	"github.com/bls-tss-network/randcast-node/internal/scheduler"
	"github.com/bls-tss-network/randcast-node/internal/subscriber"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// Chain is one chain's full set of coordination-fabric components.
// State that is genuinely per-node rather than per-chain — the group,
// the BLS core, this node's own share and address — is injected by
// value from Context so every Chain for this node agrees on it.
type Chain struct {
	ChainID uint64

	blockCache                  *dal.BlockCache
	randomnessTasks             *dal.TaskCache[types.RandomnessTask]
	groupRelayTasks             *dal.TaskCache[types.GroupRelayTask]
	groupRelayConfirmationTasks *dal.TaskCache[types.GroupRelayConfirmationTask]

	randomnessSigCache             *dal.SignatureResultCache
	groupRelaySigCache              *dal.SignatureResultCache
	groupRelayConfirmationSigCache  *dal.SignatureResultCache

	client     chainclient.Client
	groupCache *dal.GroupCache
	selfAddr   types.Address
	core       bls.Core
	share      *bls.PriShare
	memberAddrs func() []types.Address

	eq *queue.EventQueue
	l  log.Logger
}

// Deps is the per-node state every Chain shares.
type Deps struct {
	SelfAddr    types.Address
	GroupCache  *dal.GroupCache
	Core        bls.Core
	Share       *bls.PriShare
	MemberAddrs func() []types.Address
	EventQueue  *queue.EventQueue
	Logger      log.Logger
}

// New assembles a chain's caches. Listeners and subscribers are wired
// separately (RegisterSubscribers, StartListeners) so Context can
// register every subscriber across every chain before any listener
// starts publishing, the ordering Deploy requires.
func New(chainID uint64, client chainclient.Client, deps Deps) *Chain {
	return &Chain{
		ChainID: chainID,

		blockCache:                  dal.NewBlockCache(),
		randomnessTasks:             dal.NewTaskCache[types.RandomnessTask](),
		groupRelayTasks:             dal.NewTaskCache[types.GroupRelayTask](),
		groupRelayConfirmationTasks: dal.NewTaskCache[types.GroupRelayConfirmationTask](),

		randomnessSigCache:             dal.NewSignatureResultCache(),
		groupRelaySigCache:             dal.NewSignatureResultCache(),
		groupRelayConfirmationSigCache: dal.NewSignatureResultCache(),

		client:      client,
		groupCache:  deps.GroupCache,
		selfAddr:    deps.SelfAddr,
		core:        deps.Core,
		share:       deps.Share,
		memberAddrs: deps.MemberAddrs,

		eq: deps.EventQueue,
		l:  deps.Logger.Named("chain").With("chain_id", chainID),
	}
}

// caches exposes this chain's three signature caches to Context for
// sigCacheRegistry registration, without widening Chain's own public
// surface.
func (c *Chain) caches() perChainCaches {
	return perChainCaches{
		randomness:             c.randomnessSigCache,
		groupRelay:             c.groupRelaySigCache,
		groupRelayConfirmation: c.groupRelayConfirmationSigCache,
	}
}

// RegisterSubscribers wires every subscriber this chain owns onto the
// shared event queue and dynamic scheduler.
func (c *Chain) RegisterSubscribers(dynamic *scheduler.DynamicScheduler, m *metrics.Metrics) {
	randSigning := handler.NewSigningHandler(c.ChainID, types.TaskTypeRandomness, c.selfAddr, c.share, c.core, c.groupCache, c.randomnessSigCache, c.randomnessTasks, m, c.l)
	c.eq.Subscribe(subscriber.NewReadyToHandleRandomnessTaskSubscriber(c.ChainID, dynamic, randSigning, c.l))

	randFulfillment := handler.NewRandomnessFulfillmentHandler(c.ChainID, c.groupCache, c.randomnessSigCache, c.core, c.client, c.memberAddrs, m, c.l)
	c.eq.Subscribe(subscriber.NewReadyToFulfillRandomnessTaskSubscriber(c.ChainID, dynamic, randFulfillment, c.l))

	relaySigning := handler.NewSigningHandler(c.ChainID, types.TaskTypeGroupRelay, c.selfAddr, c.share, c.core, c.groupCache, c.groupRelaySigCache, c.groupRelayTasks, m, c.l)
	c.eq.Subscribe(subscriber.NewReadyToHandleGroupRelayTaskSubscriber(c.ChainID, dynamic, relaySigning, c.l))

	relayFulfillment := handler.NewGroupRelayFulfillmentHandler(c.ChainID, c.groupCache, c.groupRelaySigCache, c.core, c.client, c.memberAddrs, c.groupRelayTasks, m, c.l)
	c.eq.Subscribe(subscriber.NewReadyToFulfillGroupRelayTaskSubscriber(c.ChainID, dynamic, relayFulfillment, c.l))

	confirmationSigning := handler.NewSigningHandler(c.ChainID, types.TaskTypeGroupRelayConfirmation, c.selfAddr, c.share, c.core, c.groupCache, c.groupRelayConfirmationSigCache, c.groupRelayConfirmationTasks, m, c.l)
	c.eq.Subscribe(subscriber.NewReadyToHandleGroupRelayConfirmationTaskSubscriber(c.ChainID, dynamic, confirmationSigning, c.l))

	confirmationFulfillment := handler.NewGroupRelayConfirmationFulfillmentHandler(c.ChainID, c.groupCache, c.groupRelayConfirmationSigCache, c.core, c.client, c.memberAddrs, c.groupRelayConfirmationTasks, m, c.l)
	c.eq.Subscribe(subscriber.NewReadyToFulfillGroupRelayConfirmationTaskSubscriber(c.ChainID, dynamic, confirmationFulfillment, c.l))
}

// StartListeners launches this chain's listener loops on fixed. Must
// run after RegisterSubscribers across every chain has completed.
func (c *Chain) StartListeners(ctx context.Context, fixed *scheduler.FixedScheduler, clock clockwork.Clock) {
	newBlock := listener.NewNewBlockListener(c.ChainID, c.client, c.blockCache, c.eq, clock, c.l)
	fixed.AddTask(ctx, newBlock.Start)

	newRandomnessTask := listener.NewNewRandomnessTaskListener(c.ChainID, c.client, c.randomnessTasks, c.eq, clock, c.l)
	fixed.AddTask(ctx, newRandomnessTask.Start)

	readyToHandleRandomness := listener.NewReadyToHandleRandomnessTaskListener(c.ChainID, c.blockCache, c.groupCache, c.randomnessTasks, c.eq, clock, c.l)
	fixed.AddTask(ctx, readyToHandleRandomness.Start)

	randomnessAggregation := listener.NewRandomnessSignatureAggregationListener(c.ChainID, c.selfAddr, c.groupCache, c.randomnessSigCache, c.eq, clock, c.l)
	fixed.AddTask(ctx, randomnessAggregation.Start)

	readyToHandleConfirmation := listener.NewReadyToHandleGroupRelayConfirmationTaskListener(c.ChainID, c.blockCache, c.groupCache, c.groupRelayConfirmationTasks, c.eq, clock, c.l)
	fixed.AddTask(ctx, readyToHandleConfirmation.Start)

	relayAggregation := listener.NewGroupRelaySignatureAggregationListener(c.ChainID, c.selfAddr, c.groupCache, c.groupRelaySigCache, c.eq, clock, c.l)
	fixed.AddTask(ctx, relayAggregation.Start)

	confirmationAggregation := listener.NewGroupRelayConfirmationSignatureAggregationListener(c.ChainID, c.selfAddr, c.groupCache, c.groupRelayConfirmationSigCache, c.eq, clock, c.l)
	fixed.AddTask(ctx, confirmationAggregation.Start)

	readyToHandleGroupRelay := listener.NewReadyToHandleGroupRelayTaskListener(c.ChainID, c.blockCache, c.groupCache, c.groupRelayTasks, c.eq, clock, c.l)
	fixed.AddTask(ctx, readyToHandleGroupRelay.Start)

	newGroupRelayTask := listener.NewNewGroupRelayTaskListener(c.ChainID, c.client, c.groupRelayTasks, clock, c.l)
	fixed.AddTask(ctx, newGroupRelayTask.Start)

	newGroupRelayConfirmationTask := listener.NewNewGroupRelayConfirmationTaskListener(c.ChainID, c.client, c.groupRelayConfirmationTasks, clock, c.l)
	fixed.AddTask(ctx, newGroupRelayConfirmationTask.Start)
}
