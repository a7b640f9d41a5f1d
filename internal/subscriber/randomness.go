package subscriber

import (
	"context"

	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/handler"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/scheduler"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// ReadyToHandleRandomnessTaskSubscriber spawns one signing task per
// ready randomness task, grounded on
// subscriber/ready_to_handle_randomness_task.rs.
type ReadyToHandleRandomnessTaskSubscriber struct {
	chainID   uint64
	dynamic   *scheduler.DynamicScheduler
	handler   *handler.SigningHandler[types.RandomnessTask]
	l         log.Logger
}

func NewReadyToHandleRandomnessTaskSubscriber(
	chainID uint64,
	dynamic *scheduler.DynamicScheduler,
	h *handler.SigningHandler[types.RandomnessTask],
	l log.Logger,
) *ReadyToHandleRandomnessTaskSubscriber {
	return &ReadyToHandleRandomnessTaskSubscriber{chainID, dynamic, h, l.Named("ready_to_handle_randomness_task_subscriber")}
}

func (s *ReadyToHandleRandomnessTaskSubscriber) Topic() event.Topic {
	return event.Topic{Kind: event.TopicReadyToHandleRandomnessTask, ChainID: s.chainID}
}

func (s *ReadyToHandleRandomnessTaskSubscriber) Notify(e event.Event) error {
	payload, ok := e.(event.ReadyToHandleRandomnessTask)
	if !ok {
		wrongTopic(s.l, e)
		return nil
	}
	for _, task := range payload.Tasks {
		task := task
		s.dynamic.AddTask(func(ctx context.Context) { s.handler.Handle(ctx, task) })
	}
	return nil
}

// ReadyToFulfillRandomnessTaskSubscriber spawns one fulfillment task
// per task index the aggregation listener reports ready, grounded on
// subscriber/ready_to_fulfill_randomness_task.rs.
type ReadyToFulfillRandomnessTaskSubscriber struct {
	chainID uint64
	dynamic *scheduler.DynamicScheduler
	handler *handler.RandomnessFulfillmentHandler
	l       log.Logger
}

func NewReadyToFulfillRandomnessTaskSubscriber(
	chainID uint64,
	dynamic *scheduler.DynamicScheduler,
	h *handler.RandomnessFulfillmentHandler,
	l log.Logger,
) *ReadyToFulfillRandomnessTaskSubscriber {
	return &ReadyToFulfillRandomnessTaskSubscriber{chainID, dynamic, h, l.Named("ready_to_fulfill_randomness_task_subscriber")}
}

func (s *ReadyToFulfillRandomnessTaskSubscriber) Topic() event.Topic {
	return event.Topic{Kind: event.TopicReadyToFulfillRandomnessTask, ChainID: s.chainID}
}

func (s *ReadyToFulfillRandomnessTaskSubscriber) Notify(e event.Event) error {
	payload, ok := e.(event.ReadyToFulfillRandomnessTask)
	if !ok {
		wrongTopic(s.l, e)
		return nil
	}
	for _, index := range payload.Tasks {
		index := index
		s.dynamic.AddTask(func(ctx context.Context) { s.handler.Handle(ctx, index) })
	}
	return nil
}
