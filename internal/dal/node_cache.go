package dal

import (
	"sync"

	"github.com/bls-tss-network/randcast-node/internal/types"
)

// NodeInfoFetcher exposes this node's own immutable identity.
type NodeInfoFetcher interface {
	GetIDAddress() types.Address
	GetNodeRPCEndpoint() string
}

// NodeCache holds the node's identity. It never changes after
// construction, but is still lock-protected for uniformity with the
// other caches and to make races detectable under -race.
type NodeCache struct {
	mu       sync.RWMutex
	identity types.NodeIdentity
}

// NewNodeCache builds a NodeCache from a fully-formed identity.
func NewNodeCache(identity types.NodeIdentity) *NodeCache {
	return &NodeCache{identity: identity}
}

func (c *NodeCache) GetIDAddress() types.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.IDAddress
}

func (c *NodeCache) GetNodeRPCEndpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.RPCEndpoint
}

var _ NodeInfoFetcher = (*NodeCache)(nil)
