package handler_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/handler"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/metrics"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// stubCore is a bls.Core stand-in that always signs to a fixed value,
// letting the signing handler test assert on the recorded partial
// without real BLS12-381 math.
type stubCore struct{ partial []byte }

func (s *stubCore) PartialSign(*bls.PriShare, []byte) ([]byte, error) { return s.partial, nil }
func (s *stubCore) PartialVerify(*bls.PubPoly, []byte, []byte) error  { return nil }
func (s *stubCore) Aggregate(*bls.PubPoly, []byte, [][]byte, int, int) ([]byte, error) {
	return nil, nil
}
func (s *stubCore) Verify([]byte, []byte, []byte) error { return nil }

func TestSigningHandler_SoleCommitterRecordsOwnPartialAndDropsTask(t *testing.T) {
	self := common.HexToAddress("0x1")

	group := dal.NewGroupCache()
	group.SetGroup(types.GroupInfo{
		Index:     0,
		Threshold: 1,
		State:     true,
		PublicKey: []byte("group-pub"),
		Members: map[types.Address]types.Member{
			self: {Index: 0, IDAddress: self, PartialPublicKey: []byte("self-pub")},
		},
		Committers: map[types.Address]struct{}{self: {}},
	})

	sigCache := dal.NewSignatureResultCache()
	tasks := dal.NewTaskCache[types.RandomnessTask]()
	task := types.RandomnessTask{Index: 42, Message: []byte("round-42")}
	require.NoError(t, tasks.Add(task))

	core := &stubCore{partial: []byte("self-partial")}
	m, _ := metrics.New()

	h := handler.NewSigningHandler[types.RandomnessTask](
		1, types.TaskTypeRandomness, self,
		&bls.PriShare{Index: 0, V: []byte("share")},
		core, group, sigCache, tasks, m, log.DefaultLogger(),
	)

	h.Handle(context.Background(), task)

	entry, ok := sigCache.GetEntry(42)
	require.True(t, ok)
	assert.Equal(t, []byte("round-42"), entry.Message)
	assert.Equal(t, []byte("self-partial"), entry.Partials[self])

	assert.False(t, tasks.Contains(42), "handled task must be dropped from the ready cache")
}

func TestSigningHandler_NonCommitterNeverCreatesCacheEntry(t *testing.T) {
	self := common.HexToAddress("0x1")
	committer := common.HexToAddress("0x2")

	group := dal.NewGroupCache()
	group.SetGroup(types.GroupInfo{
		Index:     0,
		Threshold: 1,
		State:     true,
		PublicKey: []byte("group-pub"),
		Members: map[types.Address]types.Member{
			self:      {Index: 0, IDAddress: self, PartialPublicKey: []byte("self-pub")},
			committer: {Index: 1, IDAddress: committer, PartialPublicKey: []byte("peer-pub"), RPCEndpoint: ""},
		},
		Committers: map[types.Address]struct{}{committer: {}},
	})

	sigCache := dal.NewSignatureResultCache()
	tasks := dal.NewTaskCache[types.RandomnessTask]()
	task := types.RandomnessTask{Index: 7, Message: []byte("round-7")}
	require.NoError(t, tasks.Add(task))

	core := &stubCore{partial: []byte("self-partial")}
	m, _ := metrics.New()

	h := handler.NewSigningHandler[types.RandomnessTask](
		1, types.TaskTypeRandomness, self,
		&bls.PriShare{Index: 0, V: []byte("share")},
		core, group, sigCache, tasks, m, log.DefaultLogger(),
	)

	h.Handle(context.Background(), task)

	assert.False(t, sigCache.Contains(7), "a non-committer never creates a signature-cache entry, committed or not")
	assert.False(t, tasks.Contains(7))
}
