package scheduler_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-tss-network/randcast-node/internal/scheduler"
)

func TestDynamicScheduler_DrainsAllTasks(t *testing.T) {
	s := scheduler.NewDynamicScheduler()

	var ran int32
	const n = 5
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		s.AddTask(func(context.Context) {
			atomic.AddInt32(&ran, 1)
			wg.Done()
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	go s.Wait(ctx)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dynamic tasks to complete")
	}
	cancel()

	assert.Equal(t, int32(n), atomic.LoadInt32(&ran))
}

func TestDynamicScheduler_WatchdogAbortsOnDeadline(t *testing.T) {
	s := scheduler.NewDynamicScheduler()

	hung := make(chan struct{})
	started := make(chan struct{})
	s.AddTaskWithTimer(0, 20*time.Millisecond, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(hung)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Wait(ctx)

	<-started
	select {
	case <-hung:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog never aborted the hung task")
	}
}

func TestDynamicScheduler_LenReflectsQueueDepth(t *testing.T) {
	s := scheduler.NewDynamicScheduler()
	release := make(chan struct{})

	s.AddTask(func(context.Context) { <-release })
	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, time.Millisecond)

	close(release)
}
