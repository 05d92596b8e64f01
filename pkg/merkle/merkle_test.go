package merkle

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func leaf(i int) common.Hash {
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("tx-%d", i)))
}

func TestEmptyTree(t *testing.T) {
	a := New()
	require.Equal(t, common.Hash{}, a.Root())
	require.Equal(t, uint64(0), a.Len())
	require.Equal(t, 0, a.Height())

	_, err := a.Prove(0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAppendAssignsOrderedIndices(t *testing.T) {
	a := New()
	for i := 0; i < 5; i++ {
		root, index := a.Append(leaf(i))
		require.Equal(t, uint64(i), index)
		require.Equal(t, root, a.Root())
	}
	require.Equal(t, uint64(5), a.Len())
}

func TestInclusionRoundTrip(t *testing.T) {
	// Cover odd and even leaf counts, including the promoted-tail shapes.
	for _, k := range []int{1, 2, 3, 4, 5, 7, 8, 13} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			a := New()
			for i := 0; i < k; i++ {
				a.Append(leaf(i))
			}
			root := a.Root()
			for i := 0; i < k; i++ {
				proof, err := a.Prove(uint64(i))
				require.NoError(t, err)
				require.Equal(t, leaf(i), proof.Leaf)
				require.True(t, Verify(root, proof), "index %d of %d", i, k)
			}
		})
	}
}

func TestAppendInvalidatesOldProofsAgainstNewRoot(t *testing.T) {
	a := New()
	for i := 0; i < 6; i++ {
		a.Append(leaf(i))
	}
	oldRoot := a.Root()

	proofs := make([]*InclusionProof, 6)
	for i := range proofs {
		p, err := a.Prove(uint64(i))
		require.NoError(t, err)
		proofs[i] = p
	}

	newRoot, _ := a.Append(leaf(6))
	require.NotEqual(t, oldRoot, newRoot)

	for i, p := range proofs {
		require.True(t, Verify(oldRoot, p), "old proof %d against old root", i)
		require.False(t, Verify(newRoot, p), "old proof %d against new root", i)

		fresh, err := a.Prove(uint64(i))
		require.NoError(t, err)
		require.True(t, Verify(newRoot, fresh), "regenerated proof %d", i)
	}
}

func TestDuplicateLeavesDistinguishedByIndex(t *testing.T) {
	a := New()
	d := leaf(42)
	_, i0 := a.Append(d)
	_, i1 := a.Append(d)
	require.Equal(t, uint64(0), i0)
	require.Equal(t, uint64(1), i1)

	p0, err := a.Prove(0)
	require.NoError(t, err)
	p1, err := a.Prove(1)
	require.NoError(t, err)

	root := a.Root()
	require.True(t, Verify(root, p0))
	require.True(t, Verify(root, p1))
	require.NotEqual(t, p0.Steps, p1.Steps)
}

func TestRootIsPureFunctionOfLeafSequence(t *testing.T) {
	a := New()
	var leaves []common.Hash
	for i := 0; i < 9; i++ {
		l := leaf(i)
		leaves = append(leaves, l)
		a.Append(l)
	}

	b := NewFromLeaves(leaves)
	require.Equal(t, a.Root(), b.Root())

	pa, err := a.Prove(4)
	require.NoError(t, err)
	pb, err := b.Prove(4)
	require.NoError(t, err)
	require.Equal(t, pa, pb)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	a := New()
	for i := 0; i < 4; i++ {
		a.Append(leaf(i))
	}
	root := a.Root()

	proof, err := a.Prove(2)
	require.NoError(t, err)

	proof.Leaf = leaf(99)
	require.False(t, Verify(root, proof))
	require.False(t, Verify(root, nil))
}

func TestVerifyRejectsMislabeledIndex(t *testing.T) {
	a := New()
	for i := 0; i < 4; i++ {
		a.Append(leaf(i))
	}
	root := a.Root()

	proof, err := a.Prove(2)
	require.NoError(t, err)
	require.True(t, Verify(root, proof))

	// The path hashes still chain to the root, but the claimed position no
	// longer matches the step orientations.
	for _, wrong := range []uint64{0, 1, 3} {
		proof.Index = wrong
		require.False(t, Verify(root, proof), "index %d", wrong)
	}
}

func TestHeight(t *testing.T) {
	vec := []struct {
		leaves int
		height int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4},
	}
	for _, tc := range vec {
		a := New()
		for i := 0; i < tc.leaves; i++ {
			a.Append(leaf(i))
		}
		require.Equal(t, tc.height, a.Height(), "leaves %d", tc.leaves)
	}
}
