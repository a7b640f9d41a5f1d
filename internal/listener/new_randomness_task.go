package listener

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/queue"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// NewRandomnessTaskListener asks the chain for the next signature
// task and, if it is not already known, adds it to the task cache and
// emits NewRandomnessTask.
//
// The membership check runs under the cache's read lock, the add
// under its write lock — two separate critical sections rather than
// one upgradeable lock, avoiding a Go lock primitive (upgradeable
// RWMutex) the ecosystem rarely reaches for.
type NewRandomnessTaskListener struct {
	chainID  uint64
	client   chainclient.Client
	tasks    *dal.TaskCache[types.RandomnessTask]
	eq       *queue.EventQueue
	clock    clockwork.Clock
	l        log.Logger
}

func NewNewRandomnessTaskListener(
	chainID uint64,
	client chainclient.Client,
	tasks *dal.TaskCache[types.RandomnessTask],
	eq *queue.EventQueue,
	clock clockwork.Clock,
	l log.Logger,
) *NewRandomnessTaskListener {
	return &NewRandomnessTaskListener{chainID, client, tasks, eq, clock, l.Named("new_randomness_task_listener")}
}

func (n *NewRandomnessTaskListener) Start(ctx context.Context) {
	runLoop(ctx, n.clock, n.l, "new_randomness_task", 2*time.Second, n.iterate)
}

func (n *NewRandomnessTaskListener) iterate(ctx context.Context) error {
	task, err := n.client.EmitSignatureTask(ctx)
	if err != nil {
		return err
	}

	if n.tasks.Contains(task.Index) {
		return nil
	}

	if err := n.tasks.Add(task); err != nil {
		return err
	}

	n.l.Info("received new randomness task", "index", task.Index, "assignment_height", task.AssignmentBlockHeight)
	n.eq.Publish(event.NewRandomnessTask{ChainID: n.chainID, Task: task})
	return nil
}
