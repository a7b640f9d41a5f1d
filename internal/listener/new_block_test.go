package listener_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/listener"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/queue"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// heightClient is a minimal chainclient.Client stand-in that only
// serves heights in sequence; every other method is unused by
// NewBlockListener.
type heightClient struct {
	chainclient.Client
	heights []uint64
	calls   int32
}

func (c *heightClient) GetBlockHeight(context.Context) (uint64, error) {
	i := atomic.AddInt32(&c.calls, 1) - 1
	if int(i) >= len(c.heights) {
		i = int32(len(c.heights) - 1)
	}
	return c.heights[i], nil
}

type capturingSubscriber struct {
	topic event.Topic
	ch    chan event.Event
}

func (s *capturingSubscriber) Topic() event.Topic { return s.topic }
func (s *capturingSubscriber) Notify(e event.Event) error {
	s.ch <- e
	return nil
}

func TestNewBlockListener_EmitsOnlyWhenHeightAdvances(t *testing.T) {
	client := &heightClient{heights: []uint64{100, 100, 150}}
	blockCache := dal.NewBlockCache()
	clock := clockwork.NewFakeClock()
	eq := queue.New(log.DefaultLogger())

	sub := &capturingSubscriber{
		topic: event.Topic{Kind: event.TopicNewBlock, ChainID: 1},
		ch:    make(chan event.Event, 10),
	}
	eq.Subscribe(sub)

	l := listener.NewNewBlockListener(1, client, blockCache, eq, clock, log.DefaultLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Start(ctx)

	// first iteration: height 0 -> 100, emits.
	select {
	case e := <-sub.ch:
		assert.Equal(t, uint64(100), e.(event.NewBlock).BlockHeight)
	case <-time.After(time.Second):
		t.Fatal("expected first NewBlock event")
	}

	// advance the fake clock past the loop's sleep so the second
	// iteration (same height, no emit) and third (height advances
	// again) both run deterministically.
	require.Eventually(t, func() bool { return clock.BlockerCount() >= 1 }, time.Second, time.Millisecond)
	clock.Advance(2 * time.Second)

	require.Eventually(t, func() bool { return clock.BlockerCount() >= 1 }, time.Second, time.Millisecond)
	clock.Advance(2 * time.Second)

	select {
	case e := <-sub.ch:
		assert.Equal(t, uint64(150), e.(event.NewBlock).BlockHeight)
	case <-time.After(time.Second):
		t.Fatal("expected second NewBlock event once height advanced again")
	}

	assert.Equal(t, uint64(150), blockCache.GetBlockHeight())
}

var _ types.RandomnessTask // keep types import used if future tests extend this file
