package listener

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/event"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/queue"
)

// NewBlockListener polls the chain client's block height and emits
// NewBlock whenever it advances.
type NewBlockListener struct {
	chainID    uint64
	client     chainclient.Client
	blockCache *dal.BlockCache
	eq         *queue.EventQueue
	clock      clockwork.Clock
	l          log.Logger
}

func NewNewBlockListener(
	chainID uint64,
	client chainclient.Client,
	blockCache *dal.BlockCache,
	eq *queue.EventQueue,
	clock clockwork.Clock,
	l log.Logger,
) *NewBlockListener {
	return &NewBlockListener{chainID, client, blockCache, eq, clock, l.Named("new_block_listener")}
}

func (n *NewBlockListener) Start(ctx context.Context) {
	runLoop(ctx, n.clock, n.l, "new_block", time.Second, n.iterate)
}

func (n *NewBlockListener) iterate(ctx context.Context) error {
	height, err := n.client.GetBlockHeight(ctx)
	if err != nil {
		return err
	}
	if n.blockCache.SetBlockHeight(height) {
		n.eq.Publish(event.NewBlock{ChainID: n.chainID, BlockHeight: height})
	}
	return nil
}
