package queue_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/queue"
)

type recordingSubscriber struct {
	topic event.Topic
	mu    sync.Mutex
	got   []event.Event
	err   error
}

func (s *recordingSubscriber) Topic() event.Topic { return s.topic }

func (s *recordingSubscriber) Notify(e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, e)
	return s.err
}

func (s *recordingSubscriber) events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Event(nil), s.got...)
}

func TestEventQueue_PublishNoSubscribersIsNoop(t *testing.T) {
	q := queue.New(log.DefaultLogger())
	assert.NotPanics(t, func() {
		q.Publish(event.NewBlock{ChainID: 1, BlockHeight: 10})
	})
}

func TestEventQueue_DeliversToMatchingTopicOnly(t *testing.T) {
	q := queue.New(log.DefaultLogger())
	chain1 := &recordingSubscriber{topic: event.Topic{Kind: event.TopicNewBlock, ChainID: 1}}
	chain2 := &recordingSubscriber{topic: event.Topic{Kind: event.TopicNewBlock, ChainID: 2}}
	q.Subscribe(chain1)
	q.Subscribe(chain2)

	q.Publish(event.NewBlock{ChainID: 1, BlockHeight: 42})

	assert.Len(t, chain1.events(), 1)
	assert.Empty(t, chain2.events())
}

func TestEventQueue_DeliveryOrderMatchesSubscriptionOrder(t *testing.T) {
	q := queue.New(log.DefaultLogger())
	topic := event.Topic{Kind: event.TopicNewBlock, ChainID: 1}

	var mu sync.Mutex
	var order []string
	record := func(name string) *recordingSubscriberFunc {
		return &recordingSubscriberFunc{topic: topic, fn: func(event.Event) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}}
	}

	q.Subscribe(record("first"))
	q.Subscribe(record("second"))
	q.Subscribe(record("third"))

	q.Publish(event.NewBlock{ChainID: 1, BlockHeight: 1})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestEventQueue_FailingSubscriberDoesNotBlockOthers(t *testing.T) {
	q := queue.New(log.DefaultLogger())
	topic := event.Topic{Kind: event.TopicNewBlock, ChainID: 1}

	failing := &recordingSubscriber{topic: topic, err: errors.New("boom")}
	healthy := &recordingSubscriber{topic: topic}
	q.Subscribe(failing)
	q.Subscribe(healthy)

	require.NotPanics(t, func() {
		q.Publish(event.NewBlock{ChainID: 1, BlockHeight: 1})
	})

	assert.Len(t, failing.events(), 1)
	assert.Len(t, healthy.events(), 1)
}

func TestEventQueue_EveryRegisteredSubscriberReceivesExactlyOneNotify(t *testing.T) {
	q := queue.New(log.DefaultLogger())
	topic := event.Topic{Kind: event.TopicNewRandomnessTask, ChainID: 5}

	subs := make([]*recordingSubscriber, 4)
	for i := range subs {
		subs[i] = &recordingSubscriber{topic: topic}
		q.Subscribe(subs[i])
	}

	q.Publish(event.NewRandomnessTask{ChainID: 5})

	for _, s := range subs {
		assert.Len(t, s.events(), 1)
	}
}

// recordingSubscriberFunc lets ordering tests assert without a shared
// mutable event slice per subscriber.
type recordingSubscriberFunc struct {
	topic event.Topic
	fn    func(event.Event) error
}

func (s *recordingSubscriberFunc) Topic() event.Topic      { return s.topic }
func (s *recordingSubscriberFunc) Notify(e event.Event) error { return s.fn(e) }
