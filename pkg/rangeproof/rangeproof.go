// Package rangeproof proves that a committed value lies in [0, 2^bits)
// without revealing it.
//
// The construction is bit decomposition: the prover commits to each bit of
// the value, attaches a 2-way OR proof that every bit commitment opens to 0
// or 1, and picks the bit blindings so the 2^i-weighted sum of the bit
// commitments reconstructs the original commitment exactly. The verifier
// rechecks every bit proof plus the reconstruction identity.
//
// The bit width is a public deployment parameter; a proof generated for one
// width never verifies against another.
package rangeproof

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/shieldtx/pkg/pedersen"
	"github.com/yourorg/shieldtx/pkg/sigma"
)

// MaxBits bounds the supported bit width to what a uint64 amount can hold.
const MaxBits = 64

var (
	// ErrValueOutOfRange is returned when the witness value does not fit in
	// the requested bit width.
	ErrValueOutOfRange = errors.New("rangeproof: value out of range for bit width")
	// ErrInvalidBitWidth is returned for widths outside [1, MaxBits].
	ErrInvalidBitWidth = errors.New("rangeproof: bit width must be in [1, 64]")
)

// Proof attests that one specific commitment hides a value in [0, 2^Bits).
type Proof struct {
	Bits           int
	BitCommitments []pedersen.Commitment
	BitProofs      []*sigma.BitProof
}

// Prove decomposes value into bits, commits to each, and proves every bit
// commitment opens to 0 or 1. The bit blindings are chosen so that
// sum(2^i * C_i) equals Commit(value, b), making the reconstruction check a
// plain homomorphic identity on the verifier side.
func Prove(value uint64, b *pedersen.Blinding, bits int) (*Proof, error) {
	if bits < 1 || bits > MaxBits {
		return nil, ErrInvalidBitWidth
	}
	if bits < MaxBits && value>>uint(bits) != 0 {
		return nil, ErrValueOutOfRange
	}

	blindings := make([]*pedersen.Blinding, bits)

	// r_0 absorbs the slack so that sum(2^i * r_i) == b.
	var acc fr.Element
	for i := 1; i < bits; i++ {
		r, err := pedersen.NewBlinding()
		if err != nil {
			return nil, err
		}
		blindings[i] = r

		var weighted, w fr.Element
		w.SetUint64(1 << uint(i))
		e := r.Element()
		weighted.Mul(&w, &e)
		acc.Add(&acc, &weighted)
	}
	var r0 fr.Element
	be := b.Element()
	r0.Sub(&be, &acc)
	blindings[0] = pedersen.BlindingFromElement(r0)

	proof := &Proof{
		Bits:           bits,
		BitCommitments: make([]pedersen.Commitment, bits),
		BitProofs:      make([]*sigma.BitProof, bits),
	}
	for i := 0; i < bits; i++ {
		bit := (value >> uint(i)) & 1
		c := pedersen.Commit(bit, blindings[i])
		bp, err := sigma.ProveBit(bit, blindings[i], c)
		if err != nil {
			return nil, err
		}
		proof.BitCommitments[i] = c
		proof.BitProofs[i] = bp
	}
	return proof, nil
}

// Verify checks proof against commitment c at the given bit width. Pure and
// non-failing: any structural defect, failing bit proof, or reconstruction
// mismatch yields false.
func Verify(c pedersen.Commitment, proof *Proof, bits int) bool {
	if proof == nil || proof.Bits != bits || bits < 1 || bits > MaxBits {
		return false
	}
	if len(proof.BitCommitments) != bits || len(proof.BitProofs) != bits {
		return false
	}

	for i := 0; i < bits; i++ {
		if !sigma.VerifyBit(proof.BitCommitments[i], proof.BitProofs[i]) {
			return false
		}
	}

	// Reconstruction: sum(2^i * C_i) must equal c.
	var sum bn254.G1Affine
	for i := 0; i < bits; i++ {
		var term bn254.G1Affine
		term.ScalarMultiplication(&proof.BitCommitments[i].Point, new(big.Int).SetUint64(1<<uint(i)))
		sum.Add(&sum, &term)
	}
	return sum.Equal(&c.Point)
}
