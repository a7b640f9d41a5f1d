package dal

import (
	"sync"

	"github.com/bls-tss-network/randcast-node/internal/types"
)

// BLSTasksFetcher is the read side of a task cache, generic over the
// task shape (RandomnessTask, GroupRelayTask, ...). Go generics keep
// the NewXTask listeners parameterized over task type without an
// interface{} cache; unlike the Context (kept non-generic, see
// DESIGN.md), a single-purpose cache is a narrow, low-risk use.
type BLSTasksFetcher[T types.Task] interface {
	Contains(index uint64) bool
	Get(index uint64) (T, bool)
}

// BLSTasksUpdater is the write side, used by the NewXTask listeners.
type BLSTasksUpdater[T types.Task] interface {
	Add(task T) error
	Remove(index uint64)
}

// TaskCache is the in-memory, lock-protected store of not-yet-handled
// tasks for one chain. A cache entry exists from the moment a
// listener observes it until it is fulfilled.
type TaskCache[T types.Task] struct {
	mu    sync.RWMutex
	tasks map[uint64]T
}

func NewTaskCache[T types.Task]() *TaskCache[T] {
	return &TaskCache[T]{tasks: make(map[uint64]T)}
}

func (c *TaskCache[T]) Contains(index uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tasks[index]
	return ok
}

func (c *TaskCache[T]) Get(index uint64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tasks[index]
	return t, ok
}

// Add inserts task, keyed by its own index. Re-adding the same index
// replaces the stored task rather than returning an error, since the
// listener already checks Contains under a read lock before calling
// Add under the write lock, and a benign race between the two passes
// the check twice.
func (c *TaskCache[T]) Add(task T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[task.GetIndex()] = task
	return nil
}

// Remove evicts a task once it has been handled/fulfilled.
func (c *TaskCache[T]) Remove(index uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tasks, index)
}

// Available returns every task whose AssignmentBlockHeight predicate
// passes, via the caller-supplied ready func, letting each listener
// define its own readiness condition (block height reached, group
// match, ...) without the cache knowing about block heights or
// groups.
func (c *TaskCache[T]) Available(ready func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for _, t := range c.tasks {
		if ready(t) {
			out = append(out, t)
		}
	}
	return out
}

var (
	_ BLSTasksFetcher[types.RandomnessTask] = (*TaskCache[types.RandomnessTask])(nil)
	_ BLSTasksUpdater[types.RandomnessTask] = (*TaskCache[types.RandomnessTask])(nil)
)
