// Package ctxnode implements Context, the node's root object: it owns
// the main chain and zero or more adapter chains, the shared event
// queue, both schedulers, and the committer RPC server, and "deploys"
// the whole topology in the order correctness requires — subscribers
// registered on every chain before any listener starts publishing.
// Grounded on core/drand.go's Drand struct: one long-lived object
// built once at boot from already-loaded identity/group state, with a
// constructor that wires its sub-components and a handle the caller
// waits on.
package ctxnode

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/chain"
	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/committer"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/errs"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/metrics"
	"github.com/bls-tss-network/randcast-node/internal/queue"
	"github.com/bls-tss-network/randcast-node/internal/scheduler"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// mainChainID is the reserved chain id of the controller chain
//; adapter chains use whatever id their config entry
// declares.
const mainChainID uint64 = 0

// Context is the node's root object: one main chain plus a registry
// of adapter chains, sharing a single group view, BLS core, event
// queue and pair of schedulers,.
type Context struct {
	node  *dal.NodeCache
	group *dal.GroupCache
	core  bls.Core
	share *bls.PriShare

	eq      *queue.EventQueue
	fixed   *scheduler.FixedScheduler
	dynamic *scheduler.DynamicScheduler

	sigCaches *chain.SigCacheRegistry
	chains    map[uint64]*chain.Chain

	committerServer   *committer.Server
	committerEndpoint string

	metrics         *metrics.Metrics
	registry        *prometheus.Registry
	metricsEndpoint string

	clock clockwork.Clock
	l     log.Logger
}

// Deps is everything New needs that Deploy cannot derive on its own:
// pre-loaded identity and group state, a BLS core, this node's own
// secret share, the main chain's client, and the logger/clock every
// component is threaded with.
type Deps struct {
	Node  *dal.NodeCache
	Group *dal.GroupCache
	Core  bls.Core
	Share *bls.PriShare // nil if this node is not a member of Group

	MainChainClient chainclient.Client
	MetricsEndpoint string

	Clock  clockwork.Clock
	Logger log.Logger
}

// New builds a Context around the main chain. Adapter chains are
// added afterward via AddAdapterChain, then the whole topology is
// started with Deploy.
func New(deps Deps) *Context {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	l := deps.Logger
	if l == nil {
		l = log.DefaultLogger()
	}

	m, reg := metrics.New()

	c := &Context{
		node:            deps.Node,
		group:           deps.Group,
		core:            deps.Core,
		share:           deps.Share,
		eq:              queue.New(l.Named("event_queue")),
		fixed:           scheduler.NewFixedScheduler(),
		dynamic:         scheduler.NewDynamicScheduler(),
		sigCaches:       chain.NewSigCacheRegistry(),
		chains:          make(map[uint64]*chain.Chain),
		metrics:         m,
		registry:        reg,
		metricsEndpoint: deps.MetricsEndpoint,
		clock:           clock,
		l:               l,
	}

	mainChain := chain.New(mainChainID, deps.MainChainClient, chain.Deps{
		SelfAddr:    deps.Node.GetIDAddress(),
		GroupCache:  deps.Group,
		Core:        deps.Core,
		Share:       deps.Share,
		MemberAddrs: c.memberAddrs,
		EventQueue:  c.eq,
		Logger:      l,
	})
	c.chains[mainChainID] = mainChain
	c.sigCaches.Register(mainChain)

	c.committerServer = committer.NewServer(
		deps.Node.GetIDAddress(),
		deps.Group,
		c.sigCaches,
		deps.Core,
		deps.Group.PublicPolynomial,
		m,
		l.Named("committer_server"),
	)
	c.committerEndpoint = deps.Node.GetNodeRPCEndpoint()

	return c
}

// memberAddrs enumerates the current group's member addresses through
// GroupCache.MemberAddresses; GroupInfoFetcher itself offers only point
// lookups, so Context hands this one enumeration to every chain.
func (c *Context) memberAddrs() []types.Address {
	return c.group.MemberAddresses()
}

// AddAdapterChain registers a secondary chain this node also serves.
// Must be called before Deploy.
func (c *Context) AddAdapterChain(chainID uint64, client chainclient.Client) error {
	if _, exists := c.chains[chainID]; exists {
		return fmt.Errorf("ctxnode: add adapter chain %d: %w", chainID, errs.ErrRepeatedChainID)
	}

	adapter := chain.New(chainID, client, chain.Deps{
		SelfAddr:    c.node.GetIDAddress(),
		GroupCache:  c.group,
		Core:        c.core,
		Share:       c.share,
		MemberAddrs: c.memberAddrs,
		EventQueue:  c.eq,
		Logger:      c.l,
	})
	c.chains[chainID] = adapter
	c.sigCaches.Register(adapter)
	return nil
}

// ContextHandle is returned by Deploy; Wait blocks until ctx is
// cancelled, then stops every fixed task, matching step 3.
type ContextHandle struct {
	dynamic *scheduler.DynamicScheduler
	fixed   *scheduler.FixedScheduler
}

// Wait drains the dynamic scheduler until ctx is cancelled, then stops
// every fixed task (listeners, committer server, metrics endpoint).
func (h *ContextHandle) Wait(ctx context.Context) {
	h.dynamic.Wait(ctx)
	h.fixed.Shutdown()
}

// Deploy establishes the topology: register every
// chain's subscribers first, only then start any listener, then start
// the committer RPC server and the metrics endpoint. Per-chain
// registration failures are collected with go-multierror rather than
// aborting after the first, so one misconfigured chain does not hide
// problems with the others.
func (c *Context) Deploy(ctx context.Context) (*ContextHandle, error) {
	var result *multierror.Error
	for chainID, ch := range c.chains {
		if err := registerChain(ch, c.dynamic, c.metrics); err != nil {
			result = multierror.Append(result, fmt.Errorf("ctxnode: init chain %d: %w", chainID, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	for _, ch := range c.chains {
		ch.StartListeners(ctx, c.fixed, c.clock)
	}

	c.fixed.AddTask(ctx, func(taskCtx context.Context) {
		if err := committer.StartServer(taskCtx, c.committerEndpoint, c.committerServer); err != nil {
			c.l.Error("ctxnode: committer server stopped", "err", err)
		}
	})

	if c.metricsEndpoint != "" {
		c.fixed.AddTask(ctx, func(taskCtx context.Context) {
			if err := metrics.Serve(taskCtx, c.metricsEndpoint, c.registry); err != nil {
				c.l.Error("ctxnode: metrics server stopped", "err", err)
			}
		})
	}

	c.l.Info("ctxnode: deployed", "chains", len(c.chains), "committer_endpoint", c.committerEndpoint)

	return &ContextHandle{dynamic: c.dynamic, fixed: c.fixed}, nil
}

// registerChain calls RegisterSubscribers defensively: a subscriber
// constructor panicking on a construction-time invariant (
// "subscriber registered under the wrong topic") becomes an error
// Deploy can aggregate instead of taking the whole node down.
func registerChain(ch *chain.Chain, dynamic *scheduler.DynamicScheduler, m *metrics.Metrics) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register subscribers: %v", r)
		}
	}()
	ch.RegisterSubscribers(dynamic, m)
	return nil
}
