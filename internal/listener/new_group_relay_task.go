package listener

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// NewGroupRelayTaskListener is the group-relay analog of
// NewRandomnessTaskListener: it only populates the task cache.
// ReadyToHandleGroupRelayTaskListener is the sole emitter of the
// dispatch-triggering event, once a cached task's assignment height
// and group match the current state.
type NewGroupRelayTaskListener struct {
	chainID uint64
	client  chainclient.Client
	tasks   *dal.TaskCache[types.GroupRelayTask]
	clock   clockwork.Clock
	l       log.Logger
}

func NewNewGroupRelayTaskListener(
	chainID uint64,
	client chainclient.Client,
	tasks *dal.TaskCache[types.GroupRelayTask],
	clock clockwork.Clock,
	l log.Logger,
) *NewGroupRelayTaskListener {
	return &NewGroupRelayTaskListener{chainID, client, tasks, clock, l.Named("new_group_relay_task_listener")}
}

func (n *NewGroupRelayTaskListener) Start(ctx context.Context) {
	runLoop(ctx, n.clock, n.l, "new_group_relay_task", 2*time.Second, n.iterate)
}

func (n *NewGroupRelayTaskListener) iterate(ctx context.Context) error {
	task, err := n.client.EmitGroupRelayTask(ctx)
	if err != nil {
		return err
	}
	if n.tasks.Contains(task.Index) {
		return nil
	}
	if err := n.tasks.Add(task); err != nil {
		return err
	}
	n.l.Info("received new group relay task", "index", task.Index, "assignment_height", task.AssignmentBlockHeight)
	return nil
}
