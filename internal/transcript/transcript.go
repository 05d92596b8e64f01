// Package transcript implements a Keccak256-based Fiat-Shamir transcript.
//
// Every non-interactive proof in this module derives its challenges from a
// Transcript seeded with all public points of the statement, so a proof is
// bound to exactly the commitments it was generated for.
package transcript

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto"
)

// Transcript accumulates labeled messages and produces field-element
// challenges. Labels give domain separation between protocol steps.
type Transcript struct {
	state []byte
}

func New(protocol string) *Transcript {
	t := &Transcript{}
	t.Append("protocol", []byte(protocol))
	return t
}

// Append absorbs a labeled message. Length prefixes keep the encoding
// injective across message boundaries.
func (t *Transcript) Append(label string, data []byte) {
	var ln [8]byte
	binary.BigEndian.PutUint64(ln[:], uint64(len(label)))
	t.state = append(t.state, ln[:]...)
	t.state = append(t.state, label...)
	binary.BigEndian.PutUint64(ln[:], uint64(len(data)))
	t.state = append(t.state, ln[:]...)
	t.state = append(t.state, data...)
}

// AppendPoint absorbs a curve point in uncompressed form.
func (t *Transcript) AppendPoint(label string, p *bn254.G1Affine) {
	t.Append(label, p.Marshal())
}

// AppendUint64 absorbs a big-endian integer.
func (t *Transcript) AppendUint64(label string, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	t.Append(label, b[:])
}

// Challenge derives a scalar from everything absorbed so far. The digest is
// folded back into the state, so successive challenges are independent.
func (t *Transcript) Challenge(label string) fr.Element {
	digest := crypto.Keccak256(t.state, []byte(label))
	t.Append("challenge/"+label, digest)

	var e fr.Element
	e.SetBytes(digest) // reduced mod r
	return e
}
