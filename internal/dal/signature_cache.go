package dal

import (
	"sync"

	"github.com/bls-tss-network/randcast-node/internal/errs"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// SignatureResultEntry is one task's in-progress aggregation state,
// the central correctness hotspot of the signing/fulfillment pipeline.
type SignatureResultEntry struct {
	GroupIndex uint32
	Message    []byte
	Threshold  int
	Committed  bool
	Partials   map[types.Address][]byte
}

// ReadyEntry is a snapshot handed to the fulfillment handler: the task
// index plus the entry contents at the moment it was judged ready.
type ReadyEntry struct {
	Index uint64
	SignatureResultEntry
}

// SignatureResultCacheFetcher is the read side.
type SignatureResultCacheFetcher interface {
	Contains(index uint64) bool
}

// SignatureResultCacheUpdater is the write side used by handlers,
// listeners and the committer server.
type SignatureResultCacheUpdater interface {
	SignatureResultCacheFetcher

	// Add creates an entry if absent; a pre-existing entry (even
	// committed) is left untouched.
	Add(index uint64, groupIndex uint32, message []byte, threshold int) error

	// AddPartialSignature validates group membership via isMember and
	// records addr's partial, idempotently. Returns ErrUnknownMember
	// if addr is not a current member, ErrTaskNotFound if the entry
	// does not exist. ErrAlreadyCommitted is never returned here: a
	// duplicate submission after commit is still accepted as a no-op,
	// so the caller's RPC reply still reports success.
	AddPartialSignature(index uint64, addr types.Address, partial []byte, isMember func(types.Address) bool) error

	// GetReadyToCommit returns every entry with |partials| >=
	// threshold and committed == false, for the aggregation listener.
	GetReadyToCommit() []ReadyEntry

	// GetEntry returns a snapshot of one entry regardless of its
	// committed state, for the fulfillment handler to re-read after the
	// aggregation listener has only handed it an index.
	GetEntry(index uint64) (SignatureResultEntry, bool)

	// MarkCommitted transitions an entry to committed, atomically
	// check-then-set: if it is already committed, ok is false and no
	// write happens, making a duplicate fulfillment submission a
	// no-op at-most-once fulfillment.
	MarkCommitted(index uint64) (ok bool, err error)

	// Evict removes a committed entry once its submission is
	// confirmed on-chain.
	Evict(index uint64)
}

// SignatureResultCache is the in-memory store backing one (task type,
// chain) pair's signature aggregation state machine.
type SignatureResultCache struct {
	mu      sync.RWMutex
	entries map[uint64]*SignatureResultEntry
}

func NewSignatureResultCache() *SignatureResultCache {
	return &SignatureResultCache{entries: make(map[uint64]*SignatureResultEntry)}
}

func (c *SignatureResultCache) Contains(index uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[index]
	return ok
}

func (c *SignatureResultCache) Add(index uint64, groupIndex uint32, message []byte, threshold int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[index]; ok {
		return nil
	}
	c.entries[index] = &SignatureResultEntry{
		GroupIndex: groupIndex,
		Message:    message,
		Threshold:  threshold,
		Partials:   make(map[types.Address][]byte),
	}
	return nil
}

func (c *SignatureResultCache) AddPartialSignature(
	index uint64,
	addr types.Address,
	partial []byte,
	isMember func(types.Address) bool,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[index]
	if !ok {
		return errs.ErrTaskNotFound
	}
	if !isMember(addr) {
		return errs.ErrUnknownMember
	}
	if _, exists := entry.Partials[addr]; exists {
		// duplicate: silently dropped rather than treated as an error.
		return nil
	}
	entry.Partials[addr] = partial
	return nil
}

func (c *SignatureResultCache) GetReadyToCommit() []ReadyEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ready []ReadyEntry
	for index, entry := range c.entries {
		if entry.Committed {
			continue
		}
		if len(entry.Partials) < entry.Threshold {
			continue
		}
		partialsCopy := make(map[types.Address][]byte, len(entry.Partials))
		for k, v := range entry.Partials {
			partialsCopy[k] = v
		}
		ready = append(ready, ReadyEntry{
			Index: index,
			SignatureResultEntry: SignatureResultEntry{
				GroupIndex: entry.GroupIndex,
				Message:    entry.Message,
				Threshold:  entry.Threshold,
				Committed:  entry.Committed,
				Partials:   partialsCopy,
			},
		})
	}
	return ready
}

func (c *SignatureResultCache) GetEntry(index uint64) (SignatureResultEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[index]
	if !ok {
		return SignatureResultEntry{}, false
	}
	partialsCopy := make(map[types.Address][]byte, len(entry.Partials))
	for k, v := range entry.Partials {
		partialsCopy[k] = v
	}
	return SignatureResultEntry{
		GroupIndex: entry.GroupIndex,
		Message:    entry.Message,
		Threshold:  entry.Threshold,
		Committed:  entry.Committed,
		Partials:   partialsCopy,
	}, true
}

func (c *SignatureResultCache) MarkCommitted(index uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[index]
	if !ok {
		return false, errs.ErrTaskNotFound
	}
	if entry.Committed {
		return false, nil
	}
	entry.Committed = true
	return true, nil
}

func (c *SignatureResultCache) Evict(index uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, index)
}

var (
	_ SignatureResultCacheFetcher = (*SignatureResultCache)(nil)
	_ SignatureResultCacheUpdater = (*SignatureResultCache)(nil)
)
