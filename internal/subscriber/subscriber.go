// Package subscriber wires event-queue topics to handler dispatch on
// the dynamic scheduler. Every concrete subscriber here follows the
// same shape: subscribe to exactly one topic, and on Notify hand the
// event's payload to AddTask (or AddTaskWithTimer, for handlers with a
// bounded deadline) so the handler itself runs off the event-queue
// goroutine.
package subscriber

import (
	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/log"
)

// wrongTopic logs a programmer error at error level and the caller
// drops the event: a subscriber was handed an event it never
// subscribed to. It should be unreachable in practice
// since EventQueue.Publish only calls Notify for subscribers of the
// matching topic.
func wrongTopic(l log.Logger, got event.Event) {
	l.Error("subscriber notified of unexpected event", "topic", got.Topic())
}
