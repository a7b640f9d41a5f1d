// Package queue implements the process-wide in-memory publish/
// subscribe event bus.
package queue

import (
	"sync"

	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/log"
)

// Subscriber is notified once, synchronously with respect to the
// publisher, for every event published on its registered topic.
// Notify itself may spawn async work (typically onto the dynamic
// scheduler) but must not block waiting on it.
type Subscriber interface {
	Topic() event.Topic
	Notify(e event.Event) error
}

// EventQueue is the topic -> ordered-subscriber-list map.
type EventQueue struct {
	mu   sync.RWMutex
	subs map[event.Topic][]Subscriber
	l    log.Logger
}

func New(l log.Logger) *EventQueue {
	return &EventQueue{subs: make(map[event.Topic][]Subscriber), l: l}
}

// Subscribe appends s to the list for its topic. Delivery order
// equals subscription order; multiple subscribers per topic are
// allowed.
func (q *EventQueue) Subscribe(s Subscriber) {
	q.mu.Lock()
	defer q.mu.Unlock()
	topic := s.Topic()
	q.subs[topic] = append(q.subs[topic], s)
}

// Publish delivers e to every subscriber currently registered under
// e.Topic(), in subscription order. A failing Notify is logged and
// does not stop delivery to the remaining subscribers. Publishing
// with no subscribers is a silent no-op.
func (q *EventQueue) Publish(e event.Event) {
	q.mu.RLock()
	subs := q.subs[e.Topic()]
	// copy the slice header under the lock so a concurrent Subscribe
	// during delivery can't race with the range below.
	snapshot := make([]Subscriber, len(subs))
	copy(snapshot, subs)
	q.mu.RUnlock()

	for _, s := range snapshot {
		if err := s.Notify(e); err != nil {
			q.l.Error("subscriber notify failed", "topic", e.Topic().Kind.String(), "err", err)
		}
	}
}
