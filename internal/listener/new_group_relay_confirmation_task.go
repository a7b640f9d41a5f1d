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

// NewGroupRelayConfirmationTaskListener is the group-relay-
// confirmation analog of NewGroupRelayTaskListener.
type NewGroupRelayConfirmationTaskListener struct {
	chainID uint64
	client  chainclient.Client
	tasks   *dal.TaskCache[types.GroupRelayConfirmationTask]
	clock   clockwork.Clock
	l       log.Logger
}

func NewNewGroupRelayConfirmationTaskListener(
	chainID uint64,
	client chainclient.Client,
	tasks *dal.TaskCache[types.GroupRelayConfirmationTask],
	clock clockwork.Clock,
	l log.Logger,
) *NewGroupRelayConfirmationTaskListener {
	return &NewGroupRelayConfirmationTaskListener{chainID, client, tasks, clock, l.Named("new_group_relay_confirmation_task_listener")}
}

func (n *NewGroupRelayConfirmationTaskListener) Start(ctx context.Context) {
	runLoop(ctx, n.clock, n.l, "new_group_relay_confirmation_task", 2*time.Second, n.iterate)
}

func (n *NewGroupRelayConfirmationTaskListener) iterate(ctx context.Context) error {
	task, err := n.client.EmitGroupRelayConfirmationTask(ctx)
	if err != nil {
		return err
	}
	if n.tasks.Contains(task.Index) {
		return nil
	}
	if err := n.tasks.Add(task); err != nil {
		return err
	}
	n.l.Info("received new group relay confirmation task", "index", task.Index, "assignment_height", task.AssignmentBlockHeight)
	return nil
}
