// Package handler implements the short-lived units of work the
// dynamic scheduler runs in reaction to a subscriber's Notify: signing
// a task's partial share and pushing it to every committer, then
// aggregating and submitting once enough partials have landed. The
// signing handler is generic over types.Signable the same narrow way
// dal.TaskCache is (see DESIGN.md on why Context itself stays
// non-generic); the fulfillment handlers are one concrete type per
// task type.
package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/committer"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/metrics"
	"github.com/bls-tss-network/randcast-node/internal/retry"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

const (
	committerPushInterval    = 2 * time.Second
	committerPushMaxAttempts = 3
)

// SigningHandler partially signs one task and fans the partial out to
// every other committer, removing the task from tasks once dispatched
// so ReadyToHandleXTaskListener never re-emits it.
type SigningHandler[T types.Signable] struct {
	chainID    uint64
	taskType   types.TaskType
	selfAddr   types.Address
	share      *bls.PriShare
	core       bls.Core
	groupCache *dal.GroupCache
	sigCache   *dal.SignatureResultCache
	tasks      *dal.TaskCache[T]
	metrics    *metrics.Metrics
	l          log.Logger
}

func NewSigningHandler[T types.Signable](
	chainID uint64,
	taskType types.TaskType,
	selfAddr types.Address,
	share *bls.PriShare,
	core bls.Core,
	groupCache *dal.GroupCache,
	sigCache *dal.SignatureResultCache,
	tasks *dal.TaskCache[T],
	m *metrics.Metrics,
	l log.Logger,
) *SigningHandler[T] {
	return &SigningHandler[T]{
		chainID, taskType, selfAddr, share, core, groupCache, sigCache, tasks, m,
		l.Named("signing_handler").With("task_type", taskType.String()),
	}
}

// Handle runs the full signing sequence for one task: partial sign,
// record locally if self is a committer, push to every peer committer
// (each peer retried independently so one unreachable peer never
// blocks the others), then drop the task from the ready cache.
func (h *SigningHandler[T]) Handle(ctx context.Context, task T) {
	l := h.l.With("task_index", task.GetIndex())

	groupIndex, err := h.groupCache.GetIndex()
	if err != nil {
		l.Error("signing handler: group not ready", "err", err)
		return
	}
	threshold, err := h.groupCache.GetThreshold()
	if err != nil {
		l.Error("signing handler: group not ready", "err", err)
		return
	}

	message := task.SignMessage()
	partial, err := h.core.PartialSign(h.share, message)
	if err != nil {
		l.Error("signing handler: partial sign failed", "err", err)
		return
	}

	h.metrics.PartialsSigned.WithLabelValues(h.chainIDLabel(), h.taskType.String()).Inc()

	if h.groupCache.IsCommitter(h.selfAddr) {
		if err := h.sigCache.Add(task.GetIndex(), groupIndex, message, threshold); err != nil {
			l.Error("signing handler: add cache entry failed", "err", err)
			return
		}
		isMember := func(a types.Address) bool {
			_, ok := h.groupCache.GetMember(a)
			return ok
		}
		if err := h.sigCache.AddPartialSignature(task.GetIndex(), h.selfAddr, partial, isMember); err != nil {
			l.Error("signing handler: record own partial failed", "err", err)
		}
	}

	for _, addr := range h.groupCache.CommitterAddresses(h.selfAddr) {
		h.pushPartial(ctx, l, addr, task.GetIndex(), message, partial)
	}

	h.tasks.Remove(task.GetIndex())
}

func (h *SigningHandler[T]) pushPartial(ctx context.Context, l log.Logger, peer types.Address, taskIndex uint64, message, partial []byte) {
	member, ok := h.groupCache.GetMember(peer)
	if !ok || member.RPCEndpoint == "" {
		l.Warn("signing handler: no rpc endpoint for committer", "peer", peer.Hex())
		return
	}
	client := committer.NewClient(h.selfAddr, member.RPCEndpoint)

	err := retry.Bounded(ctx, committerPushInterval, committerPushMaxAttempts, func() error {
		_, err := client.CommitPartialSignature(ctx, h.chainID, h.taskType, message, taskIndex, partial)
		return err
	}, func(err error, attempt int) {
		l.Warn("signing handler: committer push failed, retrying", "peer", peer.Hex(), "attempt", attempt, "err", err)
	})
	if err != nil {
		l.Error("signing handler: committer push exhausted retries", "peer", peer.Hex(), "err", err)
		h.metrics.PartialsPushFailed.WithLabelValues(h.chainIDLabel(), h.taskType.String()).Inc()
	}
}

func (h *SigningHandler[T]) chainIDLabel() string {
	return strconv.FormatUint(h.chainID, 10)
}
