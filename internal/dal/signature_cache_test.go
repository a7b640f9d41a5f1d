package dal_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/errs"
)

func addrs(n int) []common.Address {
	out := make([]common.Address, n)
	for i := range out {
		out[i] = common.BigToAddress(big.NewInt(int64(i + 1)))
	}
	return out
}

func TestSignatureResultCache_BoundaryThreshold(t *testing.T) {
	c := dal.NewSignatureResultCache()
	members := addrs(3)
	isMember := func(a common.Address) bool {
		for _, m := range members {
			if m == a {
				return true
			}
		}
		return false
	}

	require.NoError(t, c.Add(7, 0, []byte("msg"), 3))

	// threshold-1 partials: never ready.
	require.NoError(t, c.AddPartialSignature(7, members[0], []byte("p0"), isMember))
	require.NoError(t, c.AddPartialSignature(7, members[1], []byte("p1"), isMember))
	assert.Empty(t, c.GetReadyToCommit())

	// threshold reached: ready on next poll.
	require.NoError(t, c.AddPartialSignature(7, members[2], []byte("p2"), isMember))
	ready := c.GetReadyToCommit()
	require.Len(t, ready, 1)
	assert.Equal(t, uint64(7), ready[0].Index)
	assert.Len(t, ready[0].Partials, 3)
}

func TestSignatureResultCache_DuplicateSubmissionIsNoop(t *testing.T) {
	c := dal.NewSignatureResultCache()
	members := addrs(1)
	isMember := func(a common.Address) bool { return a == members[0] }

	require.NoError(t, c.Add(1, 0, []byte("msg"), 1))
	require.NoError(t, c.AddPartialSignature(1, members[0], []byte("first"), isMember))
	require.NoError(t, c.AddPartialSignature(1, members[0], []byte("second"), isMember))

	entry, ok := c.GetEntry(1)
	require.True(t, ok)
	require.Len(t, entry.Partials, 1)
	assert.Equal(t, []byte("first"), entry.Partials[members[0]])
}

func TestSignatureResultCache_UnknownMemberRejected(t *testing.T) {
	c := dal.NewSignatureResultCache()
	require.NoError(t, c.Add(1, 0, []byte("msg"), 1))

	stranger := common.BigToAddress(big.NewInt(99))
	err := c.AddPartialSignature(1, stranger, []byte("p"), func(common.Address) bool { return false })
	assert.ErrorIs(t, err, errs.ErrUnknownMember)

	entry, ok := c.GetEntry(1)
	require.True(t, ok)
	assert.Empty(t, entry.Partials)
}

func TestSignatureResultCache_AddPartialSignature_MissingEntry(t *testing.T) {
	c := dal.NewSignatureResultCache()
	err := c.AddPartialSignature(99, common.BigToAddress(big.NewInt(1)), []byte("p"), func(common.Address) bool { return true })
	assert.ErrorIs(t, err, errs.ErrTaskNotFound)
}

func TestSignatureResultCache_MarkCommittedIsCheckThenSet(t *testing.T) {
	c := dal.NewSignatureResultCache()
	require.NoError(t, c.Add(1, 0, []byte("msg"), 1))

	ok, err := c.MarkCommitted(1)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second, duplicate emission's commit attempt becomes a no-op.
	ok, err = c.MarkCommitted(1)
	require.NoError(t, err)
	assert.False(t, ok)

	entry, found := c.GetEntry(1)
	require.True(t, found)
	assert.True(t, entry.Committed)
}

func TestSignatureResultCache_CommittedEntryNeverReady(t *testing.T) {
	c := dal.NewSignatureResultCache()
	members := addrs(1)
	isMember := func(a common.Address) bool { return a == members[0] }

	require.NoError(t, c.Add(1, 0, []byte("msg"), 1))
	require.NoError(t, c.AddPartialSignature(1, members[0], []byte("p"), isMember))
	require.Len(t, c.GetReadyToCommit(), 1)

	ok, err := c.MarkCommitted(1)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Empty(t, c.GetReadyToCommit())
}

func TestSignatureResultCache_EvictRemovesEntry(t *testing.T) {
	c := dal.NewSignatureResultCache()
	require.NoError(t, c.Add(1, 0, []byte("msg"), 1))
	c.Evict(1)
	assert.False(t, c.Contains(1))
	_, ok := c.GetEntry(1)
	assert.False(t, ok)
}

func TestSignatureResultCache_AddIsIdempotent(t *testing.T) {
	c := dal.NewSignatureResultCache()
	require.NoError(t, c.Add(1, 0, []byte("first"), 3))
	// A pre-existing entry is left untouched by a second Add, even
	// with different parameters.
	require.NoError(t, c.Add(1, 9, []byte("second"), 1))

	entry, ok := c.GetEntry(1)
	require.True(t, ok)
	assert.Equal(t, []byte("first"), entry.Message)
	assert.Equal(t, 3, entry.Threshold)
}
