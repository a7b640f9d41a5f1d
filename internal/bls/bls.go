// Package bls wraps the threshold BLS primitives the node treats as
// an opaque collaborator: partial sign, aggregate, verify and partial
// verify. Grounded on github.com/drand/kyber and kyber-bls12381, using
// kyber's threshold-BLS scheme over G1 the same way
// chain/beacon/crypto.go wraps key.Scheme.
package bls

import (
	"fmt"

	"github.com/drand/kyber"
	bls12381 "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/sign/tbls"
)

// Core is the signing/aggregation/verification surface every handler
// and the committer server depend on. A single implementation backs
// production use; tests may substitute a fake.
type Core interface {
	// PartialSign computes this member's partial signature over msg
	// using its share of the group secret polynomial.
	PartialSign(share *PriShare, msg []byte) ([]byte, error)

	// PartialVerify checks a partial signature against the group's
	// public polynomial.
	PartialVerify(pub *PubPoly, msg, partial []byte) error

	// Aggregate combines at least threshold valid partial signatures
	// into a group signature.
	Aggregate(pub *PubPoly, msg []byte, partials [][]byte, threshold, total int) ([]byte, error)

	// Verify checks a (typically aggregated) signature against the
	// group's distributed public key.
	Verify(groupPublicKey, msg, sig []byte) error
}

// PriShare is this node's share of the group secret, carried as the
// opaque bytes persisted in GroupInfo.Share plus its polynomial index.
type PriShare struct {
	Index int
	V     []byte // marshalled kyber.Scalar
}

// PubPoly is the group's public commitment polynomial, used to verify
// partial signatures without reconstructing the group secret.
type PubPoly struct {
	Commits [][]byte // marshalled kyber.Point, one per coefficient
}

type kyberCore struct {
	suite  *bls12381.Suite
	scheme tbls.ThresholdScheme
}

// NewKyberCore returns the production Core, backed by BLS12-381 over
// G1 the way drand's key.Scheme does for its own threshold scheme.
func NewKyberCore() Core {
	suite := bls12381.NewBLS12381Suite()
	scheme := tbls.NewThresholdSchemeOnG1(suite)
	return &kyberCore{suite: suite, scheme: scheme}
}

func (c *kyberCore) unmarshalPriShare(ps *PriShare) (*share.PriShare, error) {
	v := c.suite.G1().Scalar()
	if err := v.UnmarshalBinary(ps.V); err != nil {
		return nil, fmt.Errorf("bls: unmarshal pri share: %w", err)
	}
	return &share.PriShare{I: ps.Index, V: v}, nil
}

func (c *kyberCore) unmarshalPubPoly(pp *PubPoly) (*share.PubPoly, error) {
	points := make([]kyber.Point, len(pp.Commits))
	for i, b := range pp.Commits {
		p := c.suite.G2().Point()
		if err := p.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("bls: unmarshal pub poly coeff %d: %w", i, err)
		}
		points[i] = p
	}
	return share.NewPubPoly(c.suite.G2(), nil, points), nil
}

func (c *kyberCore) PartialSign(ps *PriShare, msg []byte) ([]byte, error) {
	priShare, err := c.unmarshalPriShare(ps)
	if err != nil {
		return nil, err
	}
	return c.scheme.Sign(priShare, msg)
}

func (c *kyberCore) PartialVerify(pub *PubPoly, msg, partial []byte) error {
	pubPoly, err := c.unmarshalPubPoly(pub)
	if err != nil {
		return err
	}
	return c.scheme.VerifyPartial(pubPoly, msg, partial)
}

func (c *kyberCore) Aggregate(pub *PubPoly, msg []byte, partials [][]byte, threshold, total int) ([]byte, error) {
	pubPoly, err := c.unmarshalPubPoly(pub)
	if err != nil {
		return nil, err
	}
	return c.scheme.Recover(pubPoly, msg, partials, threshold, total)
}

func (c *kyberCore) Verify(groupPublicKey, msg, sig []byte) error {
	p := c.suite.G2().Point()
	if err := p.UnmarshalBinary(groupPublicKey); err != nil {
		return fmt.Errorf("bls: unmarshal group public key: %w", err)
	}
	return c.scheme.VerifyRecovered(p, msg, sig)
}
