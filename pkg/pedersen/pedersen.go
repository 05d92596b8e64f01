// Package pedersen implements the commitment engine for shielded amounts.
//
// A commitment is C = v*G + r*H on bn254 G1, where G is the standard group
// generator and H is hashed to the curve from a fixed seed, so no party knows
// its discrete log relative to G. Commitments are hiding as long as the
// blinding r stays secret, binding under discrete log hardness, and additively
// homomorphic: Commit(v1,r1) + Commit(v2,r2) = Commit(v1+v2, r1+r2).
//
// Reusing a blinding factor across two commitments with different values is a
// caller error that breaks hiding; it is a documented precondition, not
// enforced here. The public (non-shielded) path commits with ZeroBlinding, so
// anyone can recompute the commitment from the cleartext amount.
package pedersen

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// G carries the value, H carries the blinding factor.
	G bn254.G1Affine
	H bn254.G1Affine

	ErrInvalidCommitment = errors.New("pedersen: malformed commitment encoding")
	ErrInvalidBlinding   = errors.New("pedersen: malformed blinding encoding")
)

func init() {
	_, _, g1Gen, _ := bn254.Generators()
	G = g1Gen

	// Hash-to-curve, not scalar-times-G: deriving H as s*G from a public
	// seed would publish log_G(H) and break binding.
	h, err := bn254.HashToG1([]byte("shieldtx/pedersen/H"), []byte("shieldtx/pedersen/v1"))
	if err != nil {
		panic(err)
	}
	H = h
}

// Blinding is the randomness component of a commitment.
type Blinding struct {
	r fr.Element
}

// NewBlinding draws a blinding factor from crypto/rand.
func NewBlinding() (*Blinding, error) {
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, err
	}
	return &Blinding{r: r}, nil
}

// ZeroBlinding returns the fixed all-zero blinding used for public amounts
// and the fee commitment. A zero-blinded commitment is recomputable by anyone
// who knows the cleartext value.
func ZeroBlinding() *Blinding {
	return &Blinding{}
}

// BlindingFromElement wraps a raw scalar as a blinding factor.
func BlindingFromElement(e fr.Element) *Blinding {
	return &Blinding{r: e}
}

// BlindingFromBytes decodes a 32-byte big-endian scalar.
func BlindingFromBytes(data []byte) (*Blinding, error) {
	if len(data) != fr.Bytes {
		return nil, ErrInvalidBlinding
	}
	var r fr.Element
	r.SetBytes(data)
	return &Blinding{r: r}, nil
}

// Element returns the underlying scalar.
func (b *Blinding) Element() fr.Element {
	return b.r
}

func (b *Blinding) Bytes() []byte {
	out := b.r.Bytes()
	return out[:]
}

// Add returns b + other in the scalar field.
func (b *Blinding) Add(other *Blinding) *Blinding {
	var r fr.Element
	r.Add(&b.r, &other.r)
	return &Blinding{r: r}
}

// Sub returns b - other in the scalar field.
func (b *Blinding) Sub(other *Blinding) *Blinding {
	var r fr.Element
	r.Sub(&b.r, &other.r)
	return &Blinding{r: r}
}

// Commitment is an opaque group element hiding a committed value.
type Commitment struct {
	Point bn254.G1Affine
}

// Commit computes C = value*G + blinding*H. Deterministic given both inputs.
func Commit(value uint64, b *Blinding) Commitment {
	var vG bn254.G1Affine
	vG.ScalarMultiplication(&G, new(big.Int).SetUint64(value))

	var rH bn254.G1Affine
	r := b.r
	rH.ScalarMultiplication(&H, r.BigInt(new(big.Int)))

	var c bn254.G1Affine
	c.Add(&vG, &rH)
	return Commitment{Point: c}
}

// Add combines two commitments homomorphically.
func (c Commitment) Add(other Commitment) Commitment {
	var p bn254.G1Affine
	p.Add(&c.Point, &other.Point)
	return Commitment{Point: p}
}

// Neg returns the inverse commitment, Commit(-v, -r).
func (c Commitment) Neg() Commitment {
	var p bn254.G1Affine
	p.Neg(&c.Point)
	return Commitment{Point: p}
}

// Sub returns c - other.
func (c Commitment) Sub(other Commitment) Commitment {
	return c.Add(other.Neg())
}

func (c Commitment) Equal(other Commitment) bool {
	return c.Point.Equal(&other.Point)
}

// Sum folds a commitment list with the homomorphic addition. The empty sum is
// the identity, a commitment to zero with zero blinding.
func Sum(cs []Commitment) Commitment {
	var acc Commitment
	for _, c := range cs {
		acc = acc.Add(c)
	}
	return acc
}

// Bytes serializes the commitment as an uncompressed curve point.
func (c Commitment) Bytes() []byte {
	return c.Point.Marshal()
}

// FromBytes decodes a commitment produced by Bytes.
func FromBytes(data []byte) (Commitment, error) {
	var p bn254.G1Affine
	if err := p.Unmarshal(data); err != nil {
		return Commitment{}, ErrInvalidCommitment
	}
	return Commitment{Point: p}, nil
}

// Digest returns the Keccak256 digest of the commitment, used as the leaf
// material for transaction identifiers.
func (c Commitment) Digest() common.Hash {
	return crypto.Keccak256Hash(c.Bytes())
}
