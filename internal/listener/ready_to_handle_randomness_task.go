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

// ReadyToHandleRandomnessTaskListener polls the task cache against
// the current block height and the group's readiness, emitting the
// subset of tasks whose assignment height has arrived. It never
// re-emits a task that has already been handled, because the signing
// handler removes tasks from this cache once it has dispatched them
// (see handler package).
type ReadyToHandleRandomnessTaskListener struct {
	chainID    uint64
	blockCache *dal.BlockCache
	groupCache *dal.GroupCache
	tasks      *dal.TaskCache[types.RandomnessTask]
	eq         *queue.EventQueue
	clock      clockwork.Clock
	l          log.Logger
}

func NewReadyToHandleRandomnessTaskListener(
	chainID uint64,
	blockCache *dal.BlockCache,
	groupCache *dal.GroupCache,
	tasks *dal.TaskCache[types.RandomnessTask],
	eq *queue.EventQueue,
	clock clockwork.Clock,
	l log.Logger,
) *ReadyToHandleRandomnessTaskListener {
	return &ReadyToHandleRandomnessTaskListener{chainID, blockCache, groupCache, tasks, eq, clock, l.Named("ready_to_handle_randomness_task_listener")}
}

func (n *ReadyToHandleRandomnessTaskListener) Start(ctx context.Context) {
	runLoop(ctx, n.clock, n.l, "ready_to_handle_randomness_task", time.Second, n.iterate)
}

func (n *ReadyToHandleRandomnessTaskListener) iterate(_ context.Context) error {
	if !n.groupCache.GetState() {
		return nil
	}
	currentGroupIndex, err := n.groupCache.GetIndex()
	if err != nil {
		return nil
	}
	currentHeight := n.blockCache.GetBlockHeight()

	available := n.tasks.Available(func(t types.RandomnessTask) bool {
		return t.AssignmentBlockHeight <= currentHeight && t.GroupIndex == currentGroupIndex
	})

	if len(available) == 0 {
		return nil
	}

	n.eq.Publish(event.ReadyToHandleRandomnessTask{ChainID: n.chainID, Tasks: available})
	return nil
}
