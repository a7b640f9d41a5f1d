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

// ReadyToHandleGroupRelayTaskListener is the group-relay analog of
// ReadyToHandleRandomnessTaskListener: a relay task becomes ready once
// its assignment height is reached and it targets the node's current
// group, grounded on listener/ready_to_handle_group_relay_task.rs.
type ReadyToHandleGroupRelayTaskListener struct {
	chainID    uint64
	blockCache *dal.BlockCache
	groupCache *dal.GroupCache
	tasks      *dal.TaskCache[types.GroupRelayTask]
	eq         *queue.EventQueue
	clock      clockwork.Clock
	l          log.Logger
}

func NewReadyToHandleGroupRelayTaskListener(
	chainID uint64,
	blockCache *dal.BlockCache,
	groupCache *dal.GroupCache,
	tasks *dal.TaskCache[types.GroupRelayTask],
	eq *queue.EventQueue,
	clock clockwork.Clock,
	l log.Logger,
) *ReadyToHandleGroupRelayTaskListener {
	return &ReadyToHandleGroupRelayTaskListener{
		chainID, blockCache, groupCache, tasks, eq, clock,
		l.Named("ready_to_handle_group_relay_task_listener"),
	}
}

func (n *ReadyToHandleGroupRelayTaskListener) Start(ctx context.Context) {
	runLoop(ctx, n.clock, n.l, "ready_to_handle_group_relay_task", time.Second, n.iterate)
}

func (n *ReadyToHandleGroupRelayTaskListener) iterate(_ context.Context) error {
	if !n.groupCache.GetState() {
		return nil
	}
	currentGroupIndex, err := n.groupCache.GetIndex()
	if err != nil {
		return nil
	}
	currentHeight := n.blockCache.GetBlockHeight()

	available := n.tasks.Available(func(t types.GroupRelayTask) bool {
		return t.AssignmentBlockHeight <= currentHeight && t.GroupIndex == currentGroupIndex
	})

	if len(available) == 0 {
		return nil
	}

	n.eq.Publish(event.ReadyToHandleGroupRelayTask{ChainID: n.chainID, Tasks: available})
	return nil
}
