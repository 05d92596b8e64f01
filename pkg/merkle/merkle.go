// Package merkle implements the append-only accumulator over transaction
// digests.
//
// Leaves are never removed or mutated once appended; the root is a pure
// function of the ordered leaf sequence, so two independently built
// accumulators holding the same leaves in the same order produce identical
// roots and identical inclusion proofs. Duplicate leaf digests are permitted
// and distinguished by index.
//
// Node hashing is Keccak256 with "leaf"/"node" domain tags so a leaf digest
// can never be confused with an interior node. A level with an odd node count
// promotes its last node unchanged.
package merkle

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrIndexOutOfRange is returned when an inclusion proof is requested for a
// leaf index that was never appended.
var ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")

// ProofStep is one level of an inclusion path. Right reports whether the
// sibling sits to the right of the running hash.
type ProofStep struct {
	Sibling common.Hash `json:"sibling"`
	Right   bool        `json:"right"`
}

// InclusionProof shows that Leaf was appended at Index in the accumulator
// whose root it is verified against. Stateless after creation.
type InclusionProof struct {
	Index uint64      `json:"index"`
	Leaf  common.Hash `json:"leaf"`
	Steps []ProofStep `json:"steps"`
}

// Accumulator is the one piece of shared mutable state in the core. Appends
// serialize behind the write lock; readers observe a consistent snapshot
// under the read lock.
type Accumulator struct {
	mu     sync.RWMutex
	leaves []common.Hash
}

func New() *Accumulator {
	return &Accumulator{}
}

// NewFromLeaves rebuilds an accumulator from a persisted leaf sequence.
func NewFromLeaves(leaves []common.Hash) *Accumulator {
	a := &Accumulator{leaves: make([]common.Hash, len(leaves))}
	copy(a.leaves, leaves)
	return a
}

func hashLeaf(digest common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte("leaf"), digest[:])
}

func hashNode(left, right common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte("node"), left[:], right[:])
}

func nextLevel(level []common.Hash) []common.Hash {
	next := make([]common.Hash, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 < len(level) {
			next = append(next, hashNode(level[i], level[i+1]))
		} else {
			next = append(next, level[i])
		}
	}
	return next
}

func computeRoot(leaves []common.Hash) common.Hash {
	if len(leaves) == 0 {
		return common.Hash{}
	}
	level := make([]common.Hash, len(leaves))
	for i, l := range leaves {
		level[i] = hashLeaf(l)
	}
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0]
}

// Append adds a leaf digest and returns the new root and the assigned index.
func (a *Accumulator) Append(leaf common.Hash) (common.Hash, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.leaves = append(a.leaves, leaf)
	return computeRoot(a.leaves), uint64(len(a.leaves) - 1)
}

// Root returns the current root digest; the zero hash for an empty tree.
func (a *Accumulator) Root() common.Hash {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return computeRoot(a.leaves)
}

// Len returns the number of appended leaves.
func (a *Accumulator) Len() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return uint64(len(a.leaves))
}

// Height returns the number of levels above the leaves.
func (a *Accumulator) Height() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	h := 0
	for n := len(a.leaves); n > 1; n = (n + 1) / 2 {
		h++
	}
	return h
}

// Leaves returns a copy of the ordered leaf sequence, for persistence.
func (a *Accumulator) Leaves() []common.Hash {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]common.Hash, len(a.leaves))
	copy(out, a.leaves)
	return out
}

// Prove produces the inclusion proof for the leaf at index against the
// current root.
func (a *Accumulator) Prove(index uint64) (*InclusionProof, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if index >= uint64(len(a.leaves)) {
		return nil, ErrIndexOutOfRange
	}

	proof := &InclusionProof{Index: index, Leaf: a.leaves[index]}

	level := make([]common.Hash, len(a.leaves))
	for i, l := range a.leaves {
		level[i] = hashLeaf(l)
	}
	pos := int(index)
	for len(level) > 1 {
		if pos%2 == 0 {
			if pos+1 < len(level) {
				proof.Steps = append(proof.Steps, ProofStep{Sibling: level[pos+1], Right: true})
			}
			// Odd tail node is promoted without a sibling; no step.
		} else {
			proof.Steps = append(proof.Steps, ProofStep{Sibling: level[pos-1], Right: false})
		}
		pos /= 2
		level = nextLevel(level)
	}
	return proof, nil
}

// Verify recomputes the path from leaf to root and compares against root.
// The step orientations must be consistent with Index: a right sibling needs
// an even position, a left sibling an odd one. Only the trailing node of an
// odd level is promoted, and a promoted node stays trailing, so promotions
// halve an even position and can precede only a left-sibling step.
// Pure function; false on mismatch.
func Verify(root common.Hash, proof *InclusionProof) bool {
	if proof == nil {
		return false
	}
	h := hashLeaf(proof.Leaf)
	pos := proof.Index
	for _, step := range proof.Steps {
		if step.Right {
			if pos%2 != 0 {
				return false
			}
			h = hashNode(h, step.Sibling)
		} else {
			for pos%2 == 0 {
				if pos == 0 {
					return false
				}
				pos /= 2
			}
			h = hashNode(step.Sibling, h)
		}
		pos /= 2
	}
	return h == root
}
