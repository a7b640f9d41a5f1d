package bls

import (
	"testing"

	bls12381 "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"
)

const (
	nbParticipants = 7
	threshold      = nbParticipants/2 + 1
)

func genShares(suite *bls12381.Suite) (*share.PriPoly, *share.PubPoly) {
	secret := suite.G1().Scalar().Pick(random.New())
	priPoly := share.NewPriPoly(suite.G1(), threshold, secret, random.New())
	pubPoly := priPoly.Commit(suite.G2().Point().Base())
	return priPoly, pubPoly
}

func marshalPriShare(t *testing.T, s *share.PriShare) *PriShare {
	t.Helper()
	v, err := s.V.MarshalBinary()
	require.NoError(t, err)
	return &PriShare{Index: s.I, V: v}
}

func marshalPubPoly(t *testing.T, pub *share.PubPoly) *PubPoly {
	t.Helper()
	_, commits := pub.Info()
	marshalled := make([][]byte, len(commits))
	for i, c := range commits {
		b, err := c.MarshalBinary()
		require.NoError(t, err)
		marshalled[i] = b
	}
	return &PubPoly{Commits: marshalled}
}

// TestKyberCore_AggregateAndVerify exercises the full round trip: every
// participant partial-signs, every partial verifies against the public
// polynomial, and the recovered group signature verifies against the
// distributed public key.
func TestKyberCore_AggregateAndVerify(t *testing.T) {
	suite := bls12381.NewBLS12381Suite()
	core := NewKyberCore()
	msg := []byte("entropy round 42")

	priPoly, pubPoly := genShares(suite)
	pub := marshalPubPoly(t, pubPoly)

	partials := make([][]byte, nbParticipants)
	for i, s := range priPoly.Shares(nbParticipants) {
		ps := marshalPriShare(t, s)
		partial, err := core.PartialSign(ps, msg)
		require.NoError(t, err)
		require.NoError(t, core.PartialVerify(pub, msg, partial))
		partials[i] = partial
	}

	sig, err := core.Aggregate(pub, msg, partials, threshold, nbParticipants)
	require.NoError(t, err)

	groupPublicKey, err := pubPoly.Commit().MarshalBinary()
	require.NoError(t, err)

	require.NoError(t, core.Verify(groupPublicKey, msg, sig))
}

// TestKyberCore_AggregateOrderIndependent confirms any arrival order of
// the same threshold-sized partial set recovers an identical signature.
func TestKyberCore_AggregateOrderIndependent(t *testing.T) {
	suite := bls12381.NewBLS12381Suite()
	core := NewKyberCore()
	msg := []byte("order independence check")

	priPoly, pubPoly := genShares(suite)
	pub := marshalPubPoly(t, pubPoly)

	shares := priPoly.Shares(nbParticipants)
	partials := make([][]byte, nbParticipants)
	for i, s := range shares {
		ps := marshalPriShare(t, s)
		partial, err := core.PartialSign(ps, msg)
		require.NoError(t, err)
		partials[i] = partial
	}

	forward, err := core.Aggregate(pub, msg, partials, threshold, nbParticipants)
	require.NoError(t, err)

	reversed := make([][]byte, len(partials))
	for i, p := range partials {
		reversed[len(partials)-1-i] = p
	}
	backward, err := core.Aggregate(pub, msg, reversed, threshold, nbParticipants)
	require.NoError(t, err)

	require.Equal(t, forward, backward)
}

// TestKyberCore_PartialVerifyRejectsWrongMessage confirms a partial
// signed over one message never verifies against another.
func TestKyberCore_PartialVerifyRejectsWrongMessage(t *testing.T) {
	suite := bls12381.NewBLS12381Suite()
	core := NewKyberCore()

	priPoly, pubPoly := genShares(suite)
	pub := marshalPubPoly(t, pubPoly)

	s := priPoly.Shares(nbParticipants)[0]
	ps := marshalPriShare(t, s)
	partial, err := core.PartialSign(ps, []byte("correct message"))
	require.NoError(t, err)

	require.Error(t, core.PartialVerify(pub, []byte("tampered message"), partial))
}
