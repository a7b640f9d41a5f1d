package bls

// BuildPubPoly wraps a group's public polynomial coefficient
// commitments (as produced by DKG and carried on GroupInfo.Commits)
// into the shape tbls.VerifyPartial/Recover expect. It is a plain
// data-reshaping helper, not a Core method, so the committer server
// and the fulfillment handler can share it without either depending on
// the other.
//
// These must be the polynomial's own coefficients, not a per-member
// evaluation share: tbls reconstructs member i's expected public key
// by evaluating the polynomial at i via Horner's method over these
// commitments, so substituting member i's own share in place of a
// coefficient only happens to line up by coincidence.
func BuildPubPoly(commits [][]byte) *PubPoly {
	return &PubPoly{Commits: commits}
}
