package pedersen

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestGeneratorsHaveNoKnownRelation(t *testing.T) {
	// H must not equal s*G for the seed scalar s = Keccak256(seed) mod r.
	// If it did, anyone could recompute s and open a commitment to two
	// different values.
	var s fr.Element
	s.SetBytes(crypto.Keccak256([]byte("shieldtx/pedersen/H")))

	var sG bn254.G1Affine
	sG.ScalarMultiplication(&G, s.BigInt(new(big.Int)))
	require.False(t, H.Equal(&sG))

	// Under H = s*G the openings (100, b) and (200, b - 100/s) would
	// collide on one commitment. They must not.
	var sInv, shift fr.Element
	sInv.Inverse(&s)
	shift.SetUint64(100)
	shift.Mul(&shift, &sInv)

	b, err := NewBlinding()
	require.NoError(t, err)
	forged := b.Sub(BlindingFromElement(shift))
	require.False(t, Commit(100, b).Equal(Commit(200, forged)))
}

func TestCommitDeterministic(t *testing.T) {
	b, err := NewBlinding()
	require.NoError(t, err)

	c1 := Commit(500, b)
	c2 := Commit(500, b)
	require.True(t, c1.Equal(c2))

	c3 := Commit(501, b)
	require.False(t, c1.Equal(c3))
}

func TestHomomorphismLaw(t *testing.T) {
	vec := []struct {
		name   string
		v1, v2 uint64
	}{
		{"small", 1, 2},
		{"zero left", 0, 77},
		{"zero both", 0, 0},
		{"large", 1 << 40, 1<<40 + 12345},
	}

	for _, tc := range vec {
		t.Run(tc.name, func(t *testing.T) {
			b1, err := NewBlinding()
			require.NoError(t, err)
			b2, err := NewBlinding()
			require.NoError(t, err)

			lhs := Commit(tc.v1, b1).Add(Commit(tc.v2, b2))
			rhs := Commit(tc.v1+tc.v2, b1.Add(b2))
			require.True(t, lhs.Equal(rhs))
		})
	}
}

func TestNegAndSub(t *testing.T) {
	b1, err := NewBlinding()
	require.NoError(t, err)
	b2, err := NewBlinding()
	require.NoError(t, err)

	c1 := Commit(300, b1)
	c2 := Commit(100, b2)

	// c1 - c2 == Commit(200, b1-b2)
	require.True(t, c1.Sub(c2).Equal(Commit(200, b1.Sub(b2))))

	// c + (-c) is the identity, Commit(0, 0).
	require.True(t, c1.Add(c1.Neg()).Equal(Commit(0, ZeroBlinding())))
}

func TestSum(t *testing.T) {
	b1, err := NewBlinding()
	require.NoError(t, err)
	b2, err := NewBlinding()
	require.NoError(t, err)
	b3, err := NewBlinding()
	require.NoError(t, err)

	cs := []Commitment{Commit(1, b1), Commit(2, b2), Commit(3, b3)}
	want := Commit(6, b1.Add(b2).Add(b3))
	require.True(t, Sum(cs).Equal(want))

	// Empty sum is the identity.
	require.True(t, Sum(nil).Equal(Commit(0, ZeroBlinding())))
}

func TestZeroBlindingIsPubliclyRecomputable(t *testing.T) {
	// The public transaction path relies on anyone being able to rebuild
	// the commitment from the cleartext amount.
	c := Commit(42, ZeroBlinding())
	again := Commit(42, ZeroBlinding())
	require.True(t, c.Equal(again))
}

func TestCommitmentEncoding(t *testing.T) {
	b, err := NewBlinding()
	require.NoError(t, err)
	c := Commit(12345, b)

	dec, err := FromBytes(c.Bytes())
	require.NoError(t, err)
	require.True(t, c.Equal(dec))

	_, err = FromBytes([]byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrInvalidCommitment)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	var fromJSON Commitment
	require.NoError(t, json.Unmarshal(raw, &fromJSON))
	require.True(t, c.Equal(fromJSON))
}

func TestBlindingEncoding(t *testing.T) {
	b, err := NewBlinding()
	require.NoError(t, err)

	dec, err := BlindingFromBytes(b.Bytes())
	require.NoError(t, err)
	require.True(t, Commit(9, b).Equal(Commit(9, dec)))

	_, err = BlindingFromBytes([]byte{0xff})
	require.ErrorIs(t, err, ErrInvalidBlinding)
}

func TestDigestStable(t *testing.T) {
	b, err := NewBlinding()
	require.NoError(t, err)
	c := Commit(7, b)
	require.Equal(t, c.Digest(), c.Digest())
	require.NotEqual(t, c.Digest(), Commit(8, b).Digest())
}
