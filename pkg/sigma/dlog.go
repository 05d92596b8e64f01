package sigma

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/shieldtx/internal/transcript"
	"github.com/yourorg/shieldtx/pkg/pedersen"
)

// DlogProof shows knowledge of x with Y = x*H. The caller owns the transcript
// so the challenge can be bound to a larger statement (the balance proof seeds
// it with every commitment the identity covers).
type DlogProof struct {
	A bn254.G1Affine
	S fr.Element
}

// ProveDlog proves knowledge of x for y = x*H over the given transcript.
func ProveDlog(t *transcript.Transcript, x fr.Element, y *bn254.G1Affine) (*DlogProof, error) {
	var k fr.Element
	if _, err := k.SetRandom(); err != nil {
		return nil, err
	}

	a := scalarMul(&pedersen.H, &k)

	t.AppendPoint("Y", y)
	t.AppendPoint("A", &a)
	e := t.Challenge("e")

	// s = k + e*x
	var s fr.Element
	s.Mul(&e, &x)
	s.Add(&s, &k)

	return &DlogProof{A: a, S: s}, nil
}

// VerifyDlog checks s*H == A + e*Y against a transcript seeded identically to
// the prover's.
func VerifyDlog(t *transcript.Transcript, y *bn254.G1Affine, proof *DlogProof) bool {
	if proof == nil {
		return false
	}

	t.AppendPoint("Y", y)
	t.AppendPoint("A", &proof.A)
	e := t.Challenge("e")

	lhs := scalarMul(&pedersen.H, &proof.S)

	eY := scalarMul(y, &e)
	var rhs bn254.G1Affine
	rhs.Add(&proof.A, &eY)

	return lhs.Equal(&rhs)
}
