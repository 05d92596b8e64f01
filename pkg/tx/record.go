package tx

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/yourorg/shieldtx/pkg/balance"
	"github.com/yourorg/shieldtx/pkg/pedersen"
	"github.com/yourorg/shieldtx/pkg/rangeproof"
)

// Kind tags a note as carrying a public cleartext amount or a shielded one.
// Every component branches on the tag explicitly; there is no runtime flag
// checked ad hoc downstream.
type Kind int

const (
	Public Kind = iota
	Shielded
)

func (k Kind) String() string {
	switch k {
	case Public:
		return "public"
	case Shielded:
		return "shielded"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Note is one input or output slot of a transaction. Cleartext is meaningful
// only for Public notes, where the commitment uses the fixed zero blinding
// and is recomputable by any verifier.
type Note struct {
	Kind       Kind                `json:"kind"`
	Commitment pedersen.Commitment `json:"commitment"`
	Cleartext  uint64              `json:"cleartext,omitempty"`
}

// Witness holds the raw values and blinding factors behind a record's
// commitments. It never leaves the prover: the field is excluded from every
// serialized form, and the caller keeps it private for shielded records.
type Witness struct {
	Inputs  []balance.Opening
	Outputs []balance.Opening
	Fee     balance.Opening
}

// State is the transaction lifecycle position. Transitions are
// one-directional; Committed and Rejected are terminal.
type State int

const (
	Drafted State = iota
	Proven
	Verified
	Committed
	Rejected
)

func (s State) String() string {
	switch s {
	case Drafted:
		return "drafted"
	case Proven:
		return "proven"
	case Verified:
		return "verified"
	case Committed:
		return "committed"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TransactionRecord aggregates the public evidence of one transaction:
// commitments, range proofs for every slot, the balance proof, and once
// committed, the accumulator leaf index. Records in Verified or Committed
// state are immutable; any change requires constructing a new record.
type TransactionRecord struct {
	ID            common.Hash         `json:"id"`
	Inputs        []Note              `json:"inputs"`
	Outputs       []Note              `json:"outputs"`
	Fee           uint64              `json:"fee"`
	FeeCommitment pedersen.Commitment `json:"feeCommitment"`

	// RangeProofs covers inputs in order, then outputs in order.
	RangeProofs  []*rangeproof.Proof `json:"rangeProofs"`
	BalanceProof *balance.Proof      `json:"balanceProof"`

	State     State   `json:"state"`
	LeafIndex *uint64 `json:"leafIndex,omitempty"`

	Witness *Witness `json:"-"`
}

// advance moves the record forward through the lifecycle. Backward moves and
// transitions out of a terminal state are rejected.
func (r *TransactionRecord) advance(to State) error {
	if r.State == Committed || r.State == Rejected {
		return fmt.Errorf("tx: record %s is terminal in state %s", r.ID.Hex(), r.State)
	}
	if to != Rejected && to <= r.State {
		return fmt.Errorf("tx: cannot move record %s from %s back to %s", r.ID.Hex(), r.State, to)
	}
	r.State = to
	return nil
}

// computeID digests the record's public contents: note kinds, commitments,
// cleartext amounts, and the fee. Proofs are excluded so that the identifier
// is stable across re-proving with fresh transcript randomness.
func (r *TransactionRecord) computeID() common.Hash {
	var buf []byte
	buf = append(buf, []byte("shieldtx/tx/v1")...)

	appendNote := func(n Note) {
		buf = append(buf, byte(n.Kind))
		buf = append(buf, n.Commitment.Bytes()...)
		var v [8]byte
		binary.BigEndian.PutUint64(v[:], n.Cleartext)
		buf = append(buf, v[:]...)
	}

	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(len(r.Inputs)))
	buf = append(buf, count[:]...)
	for _, n := range r.Inputs {
		appendNote(n)
	}
	binary.BigEndian.PutUint64(count[:], uint64(len(r.Outputs)))
	buf = append(buf, count[:]...)
	for _, n := range r.Outputs {
		appendNote(n)
	}

	var fee [8]byte
	binary.BigEndian.PutUint64(fee[:], r.Fee)
	buf = append(buf, fee[:]...)
	buf = append(buf, r.FeeCommitment.Bytes()...)

	return crypto.Keccak256Hash(buf)
}

// commitmentList flattens the note commitments for the balance verifier.
func commitmentList(notes []Note) []pedersen.Commitment {
	cs := make([]pedersen.Commitment, len(notes))
	for i, n := range notes {
		cs[i] = n.Commitment
	}
	return cs
}
