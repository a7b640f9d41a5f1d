package dal

import "sync"

// BlockInfoFetcher exposes the chain's last observed block height.
type BlockInfoFetcher interface {
	GetBlockHeight() uint64
}

// BlockInfoUpdater is the write side, used only by the NewBlock
// listener. SetBlockHeight reports whether height advanced the cache.
type BlockInfoUpdater interface {
	SetBlockHeight(height uint64) bool
}

// BlockCache holds one chain's monotonic block height.
type BlockCache struct {
	mu     sync.RWMutex
	height uint64
}

func NewBlockCache() *BlockCache { return &BlockCache{} }

func (c *BlockCache) GetBlockHeight() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

// SetBlockHeight stores height if it advances the cache, matching the
// cache's monotonic invariant. Returns whether it changed.
func (c *BlockCache) SetBlockHeight(height uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height <= c.height {
		return false
	}
	c.height = height
	return true
}

var _ BlockInfoFetcher = (*BlockCache)(nil)
