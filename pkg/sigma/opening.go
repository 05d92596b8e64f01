package sigma

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/shieldtx/internal/transcript"
	"github.com/yourorg/shieldtx/pkg/pedersen"
)

// OpeningProof shows knowledge of (v, r) with C = v*G + r*H without revealing
// either. It backs the commit/open diagnostic cycle.
type OpeningProof struct {
	A  bn254.G1Affine
	Sv fr.Element
	Sr fr.Element
}

func scalarMul(base *bn254.G1Affine, s *fr.Element) bn254.G1Affine {
	var p bn254.G1Affine
	e := *s
	p.ScalarMultiplication(base, e.BigInt(new(big.Int)))
	return p
}

func openingTranscript(c pedersen.Commitment, a *bn254.G1Affine) fr.Element {
	t := transcript.New("shieldtx/opening/v1")
	t.AppendPoint("G", &pedersen.G)
	t.AppendPoint("H", &pedersen.H)
	t.AppendPoint("C", &c.Point)
	t.AppendPoint("A", a)
	return t.Challenge("e")
}

// ProveOpening produces a proof of knowledge of the opening (value, b) of c.
func ProveOpening(value uint64, b *pedersen.Blinding, c pedersen.Commitment) (*OpeningProof, error) {
	var kv, kr fr.Element
	if _, err := kv.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := kr.SetRandom(); err != nil {
		return nil, err
	}

	// A = kv*G + kr*H
	aG := scalarMul(&pedersen.G, &kv)
	aH := scalarMul(&pedersen.H, &kr)
	var a bn254.G1Affine
	a.Add(&aG, &aH)

	e := openingTranscript(c, &a)

	var v fr.Element
	v.SetUint64(value)
	r := b.Element()

	// sv = kv + e*v, sr = kr + e*r
	var sv, sr, tmp fr.Element
	tmp.Mul(&e, &v)
	sv.Add(&kv, &tmp)
	tmp.Mul(&e, &r)
	sr.Add(&kr, &tmp)

	return &OpeningProof{A: a, Sv: sv, Sr: sr}, nil
}

// VerifyOpening checks sv*G + sr*H == A + e*C with e rederived from the
// transcript. Pure verdict; false on any mismatch.
func VerifyOpening(c pedersen.Commitment, proof *OpeningProof) bool {
	if proof == nil {
		return false
	}
	e := openingTranscript(c, &proof.A)

	lhsG := scalarMul(&pedersen.G, &proof.Sv)
	lhsH := scalarMul(&pedersen.H, &proof.Sr)
	var lhs bn254.G1Affine
	lhs.Add(&lhsG, &lhsH)

	eC := scalarMul(&c.Point, &e)
	var rhs bn254.G1Affine
	rhs.Add(&proof.A, &eC)

	return lhs.Equal(&rhs)
}
