package sigma

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/shieldtx/internal/transcript"
	"github.com/yourorg/shieldtx/pkg/pedersen"
)

// ErrNotABit is returned when a bit proof is requested for a value other
// than 0 or 1.
var ErrNotABit = errors.New("sigma: bit proof witness must be 0 or 1")

// BitProof is a 2-way OR proof that a commitment opens to 0 or 1.
//
// The two statements are Y0 = C and Y1 = C - G, exactly one of which is a
// multiple of H when C commits to a bit. The prover runs the honest Schnorr
// protocol on the true branch and simulates the other, splitting the
// Fiat-Shamir challenge as e = e0 + e1. Which branch was real is not
// recoverable from the proof.
type BitProof struct {
	A0, A1 bn254.G1Affine
	E0     fr.Element
	S0, S1 fr.Element
}

func bitTranscript(c pedersen.Commitment, a0, a1 *bn254.G1Affine) fr.Element {
	t := transcript.New("shieldtx/bitproof/v1")
	t.AppendPoint("C", &c.Point)
	t.AppendPoint("A0", a0)
	t.AppendPoint("A1", a1)
	return t.Challenge("e")
}

// bitStatements returns Y0 = C and Y1 = C - G.
func bitStatements(c pedersen.Commitment) (y0, y1 bn254.G1Affine) {
	y0 = c.Point
	var negG bn254.G1Affine
	negG.Neg(&pedersen.G)
	y1.Add(&c.Point, &negG)
	return
}

// ProveBit proves that c = Commit(bit, b) opens to 0 or 1.
func ProveBit(bit uint64, b *pedersen.Blinding, c pedersen.Commitment) (*BitProof, error) {
	if bit > 1 {
		return nil, ErrNotABit
	}
	y0, y1 := bitStatements(c)

	var k, eSim, sSim fr.Element
	if _, err := k.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := eSim.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := sSim.SetRandom(); err != nil {
		return nil, err
	}

	// Simulated branch: A = s*H - e*Y, which verifies for any (e, s).
	simulate := func(y *bn254.G1Affine) bn254.G1Affine {
		sH := scalarMul(&pedersen.H, &sSim)
		eY := scalarMul(y, &eSim)
		var negEY bn254.G1Affine
		negEY.Neg(&eY)
		var a bn254.G1Affine
		a.Add(&sH, &negEY)
		return a
	}

	aReal := scalarMul(&pedersen.H, &k)

	var a0, a1 bn254.G1Affine
	if bit == 0 {
		a0 = aReal
		a1 = simulate(&y1)
	} else {
		a0 = simulate(&y0)
		a1 = aReal
	}

	e := bitTranscript(c, &a0, &a1)

	// Real branch takes the remainder of the challenge split.
	var eReal fr.Element
	eReal.Sub(&e, &eSim)

	r := b.Element()
	var sReal fr.Element
	sReal.Mul(&eReal, &r)
	sReal.Add(&sReal, &k)

	proof := &BitProof{A0: a0, A1: a1}
	if bit == 0 {
		proof.E0 = eReal
		proof.S0 = sReal
		proof.S1 = sSim
	} else {
		proof.E0 = eSim
		proof.S0 = sSim
		proof.S1 = sReal
	}
	return proof, nil
}

// VerifyBit checks both branch equations under the recomputed challenge
// split. Pure verdict; false on any mismatch.
func VerifyBit(c pedersen.Commitment, proof *BitProof) bool {
	if proof == nil {
		return false
	}
	y0, y1 := bitStatements(c)

	e := bitTranscript(c, &proof.A0, &proof.A1)
	var e1 fr.Element
	e1.Sub(&e, &proof.E0)

	check := func(y *bn254.G1Affine, a *bn254.G1Affine, eb, s *fr.Element) bool {
		lhs := scalarMul(&pedersen.H, s)
		eY := scalarMul(y, eb)
		var rhs bn254.G1Affine
		rhs.Add(a, &eY)
		return lhs.Equal(&rhs)
	}

	return check(&y0, &proof.A0, &proof.E0, &proof.S0) &&
		check(&y1, &proof.A1, &e1, &proof.S1)
}
