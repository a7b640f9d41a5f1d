package subscriber

import (
	"context"

	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/handler"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/scheduler"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// ReadyToHandleGroupRelayTaskSubscriber is the group-relay analog of
// ReadyToHandleRandomnessTaskSubscriber.
type ReadyToHandleGroupRelayTaskSubscriber struct {
	chainID uint64
	dynamic *scheduler.DynamicScheduler
	handler *handler.SigningHandler[types.GroupRelayTask]
	l       log.Logger
}

func NewReadyToHandleGroupRelayTaskSubscriber(
	chainID uint64,
	dynamic *scheduler.DynamicScheduler,
	h *handler.SigningHandler[types.GroupRelayTask],
	l log.Logger,
) *ReadyToHandleGroupRelayTaskSubscriber {
	return &ReadyToHandleGroupRelayTaskSubscriber{chainID, dynamic, h, l.Named("ready_to_handle_group_relay_task_subscriber")}
}

func (s *ReadyToHandleGroupRelayTaskSubscriber) Topic() event.Topic {
	return event.Topic{Kind: event.TopicReadyToHandleGroupRelayTask, ChainID: s.chainID}
}

func (s *ReadyToHandleGroupRelayTaskSubscriber) Notify(e event.Event) error {
	payload, ok := e.(event.ReadyToHandleGroupRelayTask)
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

// ReadyToHandleGroupRelayConfirmationTaskSubscriber is the
// group-relay-confirmation analog.
type ReadyToHandleGroupRelayConfirmationTaskSubscriber struct {
	chainID uint64
	dynamic *scheduler.DynamicScheduler
	handler *handler.SigningHandler[types.GroupRelayConfirmationTask]
	l       log.Logger
}

func NewReadyToHandleGroupRelayConfirmationTaskSubscriber(
	chainID uint64,
	dynamic *scheduler.DynamicScheduler,
	h *handler.SigningHandler[types.GroupRelayConfirmationTask],
	l log.Logger,
) *ReadyToHandleGroupRelayConfirmationTaskSubscriber {
	return &ReadyToHandleGroupRelayConfirmationTaskSubscriber{chainID, dynamic, h, l.Named("ready_to_handle_group_relay_confirmation_task_subscriber")}
}

func (s *ReadyToHandleGroupRelayConfirmationTaskSubscriber) Topic() event.Topic {
	return event.Topic{Kind: event.TopicReadyToHandleGroupRelayConfirmationTask, ChainID: s.chainID}
}

func (s *ReadyToHandleGroupRelayConfirmationTaskSubscriber) Notify(e event.Event) error {
	payload, ok := e.(event.ReadyToHandleGroupRelayConfirmationTask)
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

// ReadyToFulfillGroupRelayTaskSubscriber dispatches fulfillment for
// relayed groups.
type ReadyToFulfillGroupRelayTaskSubscriber struct {
	chainID uint64
	dynamic *scheduler.DynamicScheduler
	handler *handler.GroupRelayFulfillmentHandler
	l       log.Logger
}

func NewReadyToFulfillGroupRelayTaskSubscriber(
	chainID uint64,
	dynamic *scheduler.DynamicScheduler,
	h *handler.GroupRelayFulfillmentHandler,
	l log.Logger,
) *ReadyToFulfillGroupRelayTaskSubscriber {
	return &ReadyToFulfillGroupRelayTaskSubscriber{chainID, dynamic, h, l.Named("ready_to_fulfill_group_relay_task_subscriber")}
}

func (s *ReadyToFulfillGroupRelayTaskSubscriber) Topic() event.Topic {
	return event.Topic{Kind: event.TopicReadyToFulfillGroupRelayTask, ChainID: s.chainID}
}

func (s *ReadyToFulfillGroupRelayTaskSubscriber) Notify(e event.Event) error {
	payload, ok := e.(event.ReadyToFulfillGroupRelayTask)
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

// ReadyToFulfillGroupRelayConfirmationTaskSubscriber dispatches
// fulfillment for group-relay confirmations.
type ReadyToFulfillGroupRelayConfirmationTaskSubscriber struct {
	chainID uint64
	dynamic *scheduler.DynamicScheduler
	handler *handler.GroupRelayConfirmationFulfillmentHandler
	l       log.Logger
}

func NewReadyToFulfillGroupRelayConfirmationTaskSubscriber(
	chainID uint64,
	dynamic *scheduler.DynamicScheduler,
	h *handler.GroupRelayConfirmationFulfillmentHandler,
	l log.Logger,
) *ReadyToFulfillGroupRelayConfirmationTaskSubscriber {
	return &ReadyToFulfillGroupRelayConfirmationTaskSubscriber{chainID, dynamic, h, l.Named("ready_to_fulfill_group_relay_confirmation_task_subscriber")}
}

func (s *ReadyToFulfillGroupRelayConfirmationTaskSubscriber) Topic() event.Topic {
	return event.Topic{Kind: event.TopicReadyToFulfillGroupRelayConfirmationTask, ChainID: s.chainID}
}

func (s *ReadyToFulfillGroupRelayConfirmationTaskSubscriber) Notify(e event.Event) error {
	payload, ok := e.(event.ReadyToFulfillGroupRelayConfirmationTask)
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
