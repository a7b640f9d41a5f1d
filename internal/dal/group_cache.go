package dal

import (
	"sync"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/errs"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// GroupInfoFetcher is the read side of the group cache, consulted by
// listeners, handlers and the committer server.
type GroupInfoFetcher interface {
	GetIndex() (uint32, error)
	GetEpoch() uint32
	GetThreshold() (int, error)
	GetState() bool
	GetPublicKey() ([]byte, error)
	GetShare() ([]byte, error)
	GetMember(addr types.Address) (types.Member, bool)
	MemberCount() int
	IsCommitter(addr types.Address) bool
}

// GroupInfoUpdater is the write side, used only by the (out of scope)
// grouping subsystem once a DKG round completes.
type GroupInfoUpdater interface {
	SetGroup(g types.GroupInfo)
}

// GroupCache is the lock-protected home of GroupInfo. It is mutated
// only by the grouping subsystem; every other component only reads.
type GroupCache struct {
	mu    sync.RWMutex
	group types.GroupInfo
}

// NewGroupCache builds an (initially not-ready) GroupCache.
func NewGroupCache() *GroupCache {
	return &GroupCache{
		group: types.GroupInfo{
			Members:    make(map[types.Address]types.Member),
			Committers: make(map[types.Address]struct{}),
		},
	}
}

func (c *GroupCache) SetGroup(g types.GroupInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.group = g
}

func (c *GroupCache) GetIndex() (uint32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.group.State {
		return 0, errs.ErrGroupNotReady
	}
	return c.group.Index, nil
}

func (c *GroupCache) GetEpoch() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.group.Epoch
}

func (c *GroupCache) GetThreshold() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.group.State {
		return 0, errs.ErrGroupNotReady
	}
	return c.group.Threshold, nil
}

func (c *GroupCache) GetState() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.group.State
}

func (c *GroupCache) GetPublicKey() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.group.State {
		return nil, errs.ErrGroupNotReady
	}
	return c.group.PublicKey, nil
}

func (c *GroupCache) GetShare() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.group.State || c.group.Share == nil {
		return nil, errs.ErrGroupNotReady
	}
	return c.group.Share, nil
}

func (c *GroupCache) GetMember(addr types.Address) (types.Member, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.group.Members[addr]
	return m, ok
}

func (c *GroupCache) MemberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.group.Members)
}

func (c *GroupCache) IsCommitter(addr types.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.group.Committers[addr]
	return ok
}

// CommitterAddresses returns every committer except self, the peer
// set the signing handler pushes partials to.
func (c *GroupCache) CommitterAddresses(self types.Address) []types.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	addrs := make([]types.Address, 0, len(c.group.Committers))
	for a := range c.group.Committers {
		if a == self {
			continue
		}
		addrs = append(addrs, a)
	}
	return addrs
}

// MemberAddresses returns every current member's address, the
// enumeration Context hands to each chain as its memberAddrs closure
// (GroupInfoFetcher itself only offers point lookups by design).
func (c *GroupCache) MemberAddresses() []types.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	addrs := make([]types.Address, 0, len(c.group.Members))
	for a := range c.group.Members {
		addrs = append(addrs, a)
	}
	return addrs
}

// PublicPolynomial returns the group's current public polynomial, for
// the committer server and fulfillment handlers to verify/aggregate
// partials against without reconstructing the group secret.
func (c *GroupCache) PublicPolynomial() (*bls.PubPoly, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.group.State {
		return nil, errs.ErrGroupNotReady
	}
	commits := make([][]byte, len(c.group.Commits))
	copy(commits, c.group.Commits)
	return bls.BuildPubPoly(commits), nil
}

var (
	_ GroupInfoFetcher = (*GroupCache)(nil)
	_ GroupInfoUpdater = (*GroupCache)(nil)
)
