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

// ReadyToHandleGroupRelayConfirmationTaskListener is the group-relay
// analog of ReadyToHandleRandomnessTaskListener: same block-height and
// group-readiness gate, different task and event type.
type ReadyToHandleGroupRelayConfirmationTaskListener struct {
	chainID    uint64
	blockCache *dal.BlockCache
	groupCache *dal.GroupCache
	tasks      *dal.TaskCache[types.GroupRelayConfirmationTask]
	eq         *queue.EventQueue
	clock      clockwork.Clock
	l          log.Logger
}

func NewReadyToHandleGroupRelayConfirmationTaskListener(
	chainID uint64,
	blockCache *dal.BlockCache,
	groupCache *dal.GroupCache,
	tasks *dal.TaskCache[types.GroupRelayConfirmationTask],
	eq *queue.EventQueue,
	clock clockwork.Clock,
	l log.Logger,
) *ReadyToHandleGroupRelayConfirmationTaskListener {
	return &ReadyToHandleGroupRelayConfirmationTaskListener{
		chainID, blockCache, groupCache, tasks, eq, clock,
		l.Named("ready_to_handle_group_relay_confirmation_task_listener"),
	}
}

func (n *ReadyToHandleGroupRelayConfirmationTaskListener) Start(ctx context.Context) {
	runLoop(ctx, n.clock, n.l, "ready_to_handle_group_relay_confirmation_task", time.Second, n.iterate)
}

func (n *ReadyToHandleGroupRelayConfirmationTaskListener) iterate(_ context.Context) error {
	if !n.groupCache.GetState() {
		return nil
	}
	currentGroupIndex, err := n.groupCache.GetIndex()
	if err != nil {
		return nil
	}
	currentHeight := n.blockCache.GetBlockHeight()

	available := n.tasks.Available(func(t types.GroupRelayConfirmationTask) bool {
		return t.AssignmentBlockHeight <= currentHeight && t.RelayedGroupIndex == currentGroupIndex
	})

	if len(available) == 0 {
		return nil
	}

	n.eq.Publish(event.ReadyToHandleGroupRelayConfirmationTask{ChainID: n.chainID, Tasks: available})
	return nil
}
