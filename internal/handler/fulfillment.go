package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/errs"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/metrics"
	"github.com/bls-tss-network/randcast-node/internal/retry"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

const (
	submitRetryInterval = 2 * time.Second
	submitMaxAttempts   = 3
)

// aggregator holds what every fulfillment handler needs to go from a
// ready signature-cache entry to an aggregated, verified group
// signature: the three fulfillment handlers below only differ in how
// they submit that signature to the chain client. Callers supply the
// member address list themselves (Context passes a closure over
// GroupCache.MemberAddresses).
type aggregator struct {
	chainID    uint64
	taskType   types.TaskType
	groupCache *dal.GroupCache
	sigCache   *dal.SignatureResultCache
	core       bls.Core
	metrics    *metrics.Metrics
	l          log.Logger
}

// resolve reads the entry, aggregates and verifies it, and returns the
// group signature plus the member-index-keyed partials the randomness
// adapter contract wants alongside it. ok is false when the entry is
// gone, already committed, or fails verification — in every such case
// the caller should skip submission without treating it as fatal.
func (a *aggregator) resolve(index uint64, memberAddrs []types.Address) (groupIndex uint32, sig []byte, partialsWithIndex map[int][]byte, ok bool) {
	entry, found := a.sigCache.GetEntry(index)
	if !found || entry.Committed {
		return 0, nil, nil, false
	}

	members := make(map[types.Address]types.Member, len(memberAddrs))
	for _, addr := range memberAddrs {
		if m, isMember := a.groupCache.GetMember(addr); isMember {
			members[addr] = m
		}
	}

	partials := make([][]byte, 0, len(entry.Partials))
	partialsWithIndex = make(map[int][]byte, len(entry.Partials))
	for addr, partial := range entry.Partials {
		member, isMember := members[addr]
		if !isMember {
			continue
		}
		partials = append(partials, partial)
		partialsWithIndex[member.Index] = partial
	}

	pubPoly, err := a.groupCache.PublicPolynomial()
	if err != nil {
		a.l.Error("fulfillment handler: group not ready", "task_index", index, "err", err)
		return 0, nil, nil, false
	}
	aggregated, err := a.core.Aggregate(pubPoly, entry.Message, partials, entry.Threshold, len(partials))
	if err != nil {
		a.l.Error("fulfillment handler: aggregate failed", "task_index", index, "err", err)
		return 0, nil, nil, false
	}

	groupPublicKey, err := a.groupCache.GetPublicKey()
	if err != nil {
		a.l.Error("fulfillment handler: group not ready", "task_index", index, "err", err)
		return 0, nil, nil, false
	}
	if err := a.core.Verify(groupPublicKey, entry.Message, aggregated); err != nil {
		a.l.Error("fulfillment handler: verify failed", "task_index", index, "err", err)
		return 0, nil, nil, false
	}

	return entry.GroupIndex, aggregated, partialsWithIndex, true
}

// markCommittedAndEvict implements the at-most-once half of
// fulfillment that lives on the handler side: MarkCommitted's atomic
// check-then-set makes a concurrent duplicate submission attempt a
// no-op, and the entry is evicted only once the chain has actually
// confirmed it.
func (a *aggregator) markCommittedAndEvict(index uint64, submit func() (chainclient.TxReceipt, error)) {
	committed, err := a.sigCache.MarkCommitted(index)
	if err != nil {
		if err != errs.ErrTaskNotFound {
			a.l.Error("fulfillment handler: mark committed failed", "task_index", index, "err", err)
		}
		return
	}
	if !committed {
		return
	}

	var receipt chainclient.TxReceipt
	err = retry.Bounded(context.Background(), submitRetryInterval, submitMaxAttempts, func() error {
		var submitErr error
		receipt, submitErr = submit()
		return submitErr
	}, func(err error, attempt int) {
		a.l.Warn("fulfillment handler: submission failed, retrying", "task_index", index, "attempt", attempt, "err", err)
	})
	if err != nil {
		a.l.Error("fulfillment handler: submission failed", "task_index", index, "err", err)
		a.metrics.FulfillmentsFailed.WithLabelValues(a.chainIDLabel(), a.taskType.String()).Inc()
		return
	}
	if !receipt.Success {
		a.l.Error("fulfillment handler: submission reverted", "task_index", index, "tx_hash", receipt.TxHash)
		a.metrics.FulfillmentsFailed.WithLabelValues(a.chainIDLabel(), a.taskType.String()).Inc()
		return
	}

	a.l.Info("fulfillment handler: submitted", "task_index", index, "tx_hash", receipt.TxHash)
	a.metrics.FulfillmentsSent.WithLabelValues(a.chainIDLabel(), a.taskType.String()).Inc()
	a.sigCache.Evict(index)
}

func (a *aggregator) chainIDLabel() string {
	return strconv.FormatUint(a.chainID, 10)
}

// RandomnessFulfillmentHandler implements fulfillment for randomness
// tasks: aggregate, verify, mark committed, submit via
// FulfillRandomness, evict once the receipt reports success. An entry
// whose submission fails or reverts stays marked committed and is not
// submitted again.
type RandomnessFulfillmentHandler struct {
	agg         *aggregator
	client      chainclient.Client
	memberAddrs func() []types.Address
}

func NewRandomnessFulfillmentHandler(
	chainID uint64,
	groupCache *dal.GroupCache,
	sigCache *dal.SignatureResultCache,
	core bls.Core,
	client chainclient.Client,
	memberAddrs func() []types.Address,
	m *metrics.Metrics,
	l log.Logger,
) *RandomnessFulfillmentHandler {
	return &RandomnessFulfillmentHandler{
		agg:         &aggregator{chainID, types.TaskTypeRandomness, groupCache, sigCache, core, m, l.Named("randomness_fulfillment_handler")},
		client:      client,
		memberAddrs: memberAddrs,
	}
}

func (h *RandomnessFulfillmentHandler) Handle(ctx context.Context, taskIndex uint64) {
	groupIndex, sig, partialsWithIndex, ok := h.agg.resolve(taskIndex, h.memberAddrs())
	if !ok {
		return
	}
	h.agg.markCommittedAndEvict(taskIndex, func() (chainclient.TxReceipt, error) {
		return h.client.FulfillRandomness(ctx, groupIndex, taskIndex, sig, partialsWithIndex)
	})
}

// GroupRelayFulfillmentHandler implements the group-relay analog of
// RandomnessFulfillmentHandler: same aggregate/verify core, submitted
// via FulfillGroupRelay against the relayed task instead.
type GroupRelayFulfillmentHandler struct {
	agg         *aggregator
	client      chainclient.Client
	memberAddrs func() []types.Address
	tasks       *dal.TaskCache[types.GroupRelayTask]
}

func NewGroupRelayFulfillmentHandler(
	chainID uint64,
	groupCache *dal.GroupCache,
	sigCache *dal.SignatureResultCache,
	core bls.Core,
	client chainclient.Client,
	memberAddrs func() []types.Address,
	tasks *dal.TaskCache[types.GroupRelayTask],
	m *metrics.Metrics,
	l log.Logger,
) *GroupRelayFulfillmentHandler {
	return &GroupRelayFulfillmentHandler{
		agg:         &aggregator{chainID, types.TaskTypeGroupRelay, groupCache, sigCache, core, m, l.Named("group_relay_fulfillment_handler")},
		client:      client,
		memberAddrs: memberAddrs,
		tasks:       tasks,
	}
}

func (h *GroupRelayFulfillmentHandler) Handle(ctx context.Context, taskIndex uint64) {
	task, found := h.tasks.Get(taskIndex)
	if !found {
		h.agg.l.Warn("group relay fulfillment handler: unknown task", "task_index", taskIndex)
		return
	}
	_, sig, _, ok := h.agg.resolve(taskIndex, h.memberAddrs())
	if !ok {
		return
	}
	h.agg.markCommittedAndEvict(taskIndex, func() (chainclient.TxReceipt, error) {
		return h.client.FulfillGroupRelay(ctx, task, sig)
	})
}

// GroupRelayConfirmationFulfillmentHandler is the group-relay-
// confirmation analog, submitted via FulfillGroupRelayConfirmation.
type GroupRelayConfirmationFulfillmentHandler struct {
	agg         *aggregator
	client      chainclient.Client
	memberAddrs func() []types.Address
	tasks       *dal.TaskCache[types.GroupRelayConfirmationTask]
}

func NewGroupRelayConfirmationFulfillmentHandler(
	chainID uint64,
	groupCache *dal.GroupCache,
	sigCache *dal.SignatureResultCache,
	core bls.Core,
	client chainclient.Client,
	memberAddrs func() []types.Address,
	tasks *dal.TaskCache[types.GroupRelayConfirmationTask],
	m *metrics.Metrics,
	l log.Logger,
) *GroupRelayConfirmationFulfillmentHandler {
	return &GroupRelayConfirmationFulfillmentHandler{
		agg:         &aggregator{chainID, types.TaskTypeGroupRelayConfirmation, groupCache, sigCache, core, m, l.Named("group_relay_confirmation_fulfillment_handler")},
		client:      client,
		memberAddrs: memberAddrs,
		tasks:       tasks,
	}
}

func (h *GroupRelayConfirmationFulfillmentHandler) Handle(ctx context.Context, taskIndex uint64) {
	task, found := h.tasks.Get(taskIndex)
	if !found {
		h.agg.l.Warn("group relay confirmation fulfillment handler: unknown task", "task_index", taskIndex)
		return
	}
	_, sig, _, ok := h.agg.resolve(taskIndex, h.memberAddrs())
	if !ok {
		return
	}
	h.agg.markCommittedAndEvict(taskIndex, func() (chainclient.TxReceipt, error) {
		return h.client.FulfillGroupRelayConfirmation(ctx, task, sig)
	})
}
