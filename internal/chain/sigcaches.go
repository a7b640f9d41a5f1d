package chain

import (
	"sync"

	"github.com/bls-tss-network/randcast-node/internal/committer"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/errs"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// perChainCaches is one chain's three task-type signature caches.
type perChainCaches struct {
	randomness             *dal.SignatureResultCache
	groupRelay             *dal.SignatureResultCache
	groupRelayConfirmation *dal.SignatureResultCache
}

// SigCacheRegistry resolves a (chain, task type) pair to the right
// signature cache, backing the single committer RPC endpoint this
// node exposes across every chain it serves. Built once by ctxnode
// and shared between every Chain and the committer server.
type SigCacheRegistry struct {
	mu     sync.RWMutex
	chains map[uint64]perChainCaches
}

// NewSigCacheRegistry builds an empty registry; chains register
// themselves via Register as ctxnode constructs them.
func NewSigCacheRegistry() *SigCacheRegistry {
	return &SigCacheRegistry{chains: make(map[uint64]perChainCaches)}
}

// Register adds c's three signature caches under c.ChainID, so the
// node-wide committer server can route an incoming partial to this
// chain regardless of which chain's endpoint it arrived on.
func (r *SigCacheRegistry) Register(c *Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[c.ChainID] = c.caches()
}

func (r *SigCacheRegistry) For(chainID uint64, taskType types.TaskType) (dal.SignatureResultCacheUpdater, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.chains[chainID]
	if !ok {
		return nil, errs.ErrUnknownChain
	}
	switch taskType {
	case types.TaskTypeRandomness:
		return c.randomness, nil
	case types.TaskTypeGroupRelay:
		return c.groupRelay, nil
	case types.TaskTypeGroupRelayConfirmation:
		return c.groupRelayConfirmation, nil
	default:
		return nil, errs.ErrWrongTopic
	}
}

var _ committer.SignatureCaches = (*SigCacheRegistry)(nil)
