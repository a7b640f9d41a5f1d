package handler_test

import (
	"context"
	"fmt"
	"testing"

	bls12381 "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/util/random"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/chainclient"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/handler"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/metrics"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// fulfillingClient is a chainclient.Client stand-in that just records
// the aggregated signature it was asked to submit, so the test can
// assert on exactly what cleared BuildPubPoly/Aggregate/Verify.
type fulfillingClient struct {
	chainclient.Client
	gotSig []byte
	calls  int
}

func (c *fulfillingClient) FulfillRandomness(
	_ context.Context,
	_ uint32,
	_ uint64,
	aggregatedSig []byte,
	_ map[int][]byte,
) (chainclient.TxReceipt, error) {
	c.calls++
	c.gotSig = aggregatedSig
	return chainclient.TxReceipt{TxHash: "0xabc", Success: true}, nil
}

// TestRandomnessFulfillmentHandler_RealDKGRoundTrip runs a genuine
// threshold-DKG-shaped group (real kyber PriPoly/PubPoly, the same
// construction bls_test.go proves correct) all the way through
// signing, the PartialVerify call the committer server makes, and the fulfillment
// handler's aggregate/verify/submit, using the production kyberCore —
// not a fake that compares fixed byte strings. This is the path that
// silently broke when GroupInfo.Commits carried per-member partial
// public keys instead of real polynomial coefficients.
func TestRandomnessFulfillmentHandler_RealDKGRoundTrip(t *testing.T) {
	const (
		nbParticipants = 4
		threshold      = 3
	)

	suite := bls12381.NewBLS12381Suite()
	core := bls.NewKyberCore()
	msg := []byte("entropy round 42")

	secret := suite.G1().Scalar().Pick(random.New())
	priPoly := share.NewPriPoly(suite.G1(), threshold, secret, random.New())
	pubPoly := priPoly.Commit(suite.G2().Point().Base())

	_, coeffPoints := pubPoly.Info()
	commits := make([][]byte, len(coeffPoints))
	for i, p := range coeffPoints {
		b, err := p.MarshalBinary()
		require.NoError(t, err)
		commits[i] = b
	}

	groupPublicKey, err := pubPoly.Commit().MarshalBinary()
	require.NoError(t, err)

	priShares := priPoly.Shares(nbParticipants)
	addrs := make([]types.Address, nbParticipants)
	members := make(map[types.Address]types.Member, nbParticipants)
	for i := range priShares {
		addrs[i] = common.HexToAddress(fmt.Sprintf("0x%d", i+1))
		members[addrs[i]] = types.Member{Index: i, IDAddress: addrs[i]}
	}
	self := addrs[0]

	groupCache := dal.NewGroupCache()
	groupCache.SetGroup(types.GroupInfo{
		Index:      0,
		Threshold:  threshold,
		State:      true,
		PublicKey:  groupPublicKey,
		Commits:    commits,
		Members:    members,
		Committers: map[types.Address]struct{}{self: {}},
	})

	sigCache := dal.NewSignatureResultCache()
	require.NoError(t, sigCache.Add(7, 0, msg, threshold))

	isMember := func(a types.Address) bool {
		_, ok := members[a]
		return ok
	}
	for i := 0; i < threshold; i++ {
		v, err := priShares[i].V.MarshalBinary()
		require.NoError(t, err)
		partial, err := core.PartialSign(&bls.PriShare{Index: priShares[i].I, V: v}, msg)
		require.NoError(t, err)
		require.NoError(t, core.PartialVerify(bls.BuildPubPoly(commits), msg, partial))
		require.NoError(t, sigCache.AddPartialSignature(7, addrs[i], partial, isMember))
	}

	m, _ := metrics.New()
	client := &fulfillingClient{}
	h := handler.NewRandomnessFulfillmentHandler(
		1, groupCache, sigCache, core, client,
		func() []types.Address { return addrs },
		m, log.DefaultLogger(),
	)

	h.Handle(context.Background(), 7)

	require.Equal(t, 1, client.calls, "aggregation and verification must succeed against the real group key")
	assert.NoError(t, core.Verify(groupPublicKey, msg, client.gotSig))

	assert.False(t, sigCache.Contains(7), "a confirmed submission evicts the entry")
}

// TestRandomnessFulfillmentHandler_BelowThresholdNeverSubmits confirms
// the real core's Aggregate rejects a partial set short of threshold,
// so the handler never calls FulfillRandomness and never marks the
// entry committed.
func TestRandomnessFulfillmentHandler_BelowThresholdNeverSubmits(t *testing.T) {
	const (
		nbParticipants = 4
		threshold      = 3
	)

	suite := bls12381.NewBLS12381Suite()
	core := bls.NewKyberCore()
	msg := []byte("entropy round 7")

	secret := suite.G1().Scalar().Pick(random.New())
	priPoly := share.NewPriPoly(suite.G1(), threshold, secret, random.New())
	pubPoly := priPoly.Commit(suite.G2().Point().Base())

	_, coeffPoints := pubPoly.Info()
	commits := make([][]byte, len(coeffPoints))
	for i, p := range coeffPoints {
		b, err := p.MarshalBinary()
		require.NoError(t, err)
		commits[i] = b
	}
	groupPublicKey, err := pubPoly.Commit().MarshalBinary()
	require.NoError(t, err)

	priShares := priPoly.Shares(nbParticipants)
	addrs := make([]types.Address, nbParticipants)
	members := make(map[types.Address]types.Member, nbParticipants)
	for i := range priShares {
		addrs[i] = common.HexToAddress(fmt.Sprintf("0x%d", i+1))
		members[addrs[i]] = types.Member{Index: i, IDAddress: addrs[i]}
	}
	self := addrs[0]

	groupCache := dal.NewGroupCache()
	groupCache.SetGroup(types.GroupInfo{
		Index:      0,
		Threshold:  threshold,
		State:      true,
		PublicKey:  groupPublicKey,
		Commits:    commits,
		Members:    members,
		Committers: map[types.Address]struct{}{self: {}},
	})

	sigCache := dal.NewSignatureResultCache()
	require.NoError(t, sigCache.Add(9, 0, msg, threshold))

	isMember := func(a types.Address) bool {
		_, ok := members[a]
		return ok
	}
	// Only threshold-1 partials: never enough to aggregate.
	for i := 0; i < threshold-1; i++ {
		v, err := priShares[i].V.MarshalBinary()
		require.NoError(t, err)
		partial, err := core.PartialSign(&bls.PriShare{Index: priShares[i].I, V: v}, msg)
		require.NoError(t, err)
		require.NoError(t, sigCache.AddPartialSignature(9, addrs[i], partial, isMember))
	}

	m, _ := metrics.New()
	client := &fulfillingClient{}
	h := handler.NewRandomnessFulfillmentHandler(
		1, groupCache, sigCache, core, client,
		func() []types.Address { return addrs },
		m, log.DefaultLogger(),
	)

	h.Handle(context.Background(), 9)

	assert.Zero(t, client.calls, "below-threshold partials must never reach FulfillRandomness")
	entry, ok := sigCache.GetEntry(9)
	require.True(t, ok)
	assert.False(t, entry.Committed)
}
