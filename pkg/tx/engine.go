// Package tx sequences the commitment engine, range prover, balance prover,
// and Merkle accumulator into the transaction lifecycle, and exposes the
// verification entry point any third party can run from public data alone.
package tx

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/shieldtx/pkg/balance"
	"github.com/yourorg/shieldtx/pkg/merkle"
	"github.com/yourorg/shieldtx/pkg/pedersen"
	"github.com/yourorg/shieldtx/pkg/rangeproof"
	"github.com/yourorg/shieldtx/pkg/sigma"
)

// DefaultBits is the range proof bit width used unless a deployment fixes a
// different one.
const DefaultBits = 64

// Engine drives transaction records through Drafted, Proven, Verified, and
// Committed against one accumulator instance. Proof generation and
// verification are stateless; only Commit touches shared state.
type Engine struct {
	acc  *merkle.Accumulator
	bits int
}

// NewEngine binds an engine to an accumulator and a range proof bit width.
// The accumulator is passed in, never a process-wide singleton, so callers
// and tests can run isolated instances.
func NewEngine(acc *merkle.Accumulator, bits int) (*Engine, error) {
	if acc == nil {
		return nil, fmt.Errorf("tx: engine requires an accumulator")
	}
	if bits < 1 || bits > rangeproof.MaxBits {
		return nil, rangeproof.ErrInvalidBitWidth
	}
	return &Engine{acc: acc, bits: bits}, nil
}

// Bits returns the deployment bit width.
func (e *Engine) Bits() int { return e.bits }

// buildNote commits to one value. Shielded notes draw a fresh random
// blinding and keep the cleartext out of the record; public notes use the
// fixed zero blinding and retain the cleartext, making the commitment
// recomputable by any verifier. Both run the same commitment path.
func buildNote(value uint64, kind Kind) (Note, balance.Opening, error) {
	var b *pedersen.Blinding
	var err error
	switch kind {
	case Shielded:
		if b, err = pedersen.NewBlinding(); err != nil {
			return Note{}, balance.Opening{}, err
		}
	default:
		b = pedersen.ZeroBlinding()
	}

	c := pedersen.Commit(value, b)
	note := Note{Kind: kind, Commitment: c}
	if kind == Public {
		note.Cleartext = value
	}
	return note, balance.Opening{Commitment: c, Value: value, Blinding: b}, nil
}

// CreateTransaction builds a fully proven record from resolved witness
// values: commitments for every slot, a range proof per slot, and the balance
// proof. Generation-time failures are reported immediately and leave no
// partially proven record behind.
func (e *Engine) CreateTransaction(inputs, outputs []uint64, fee uint64, shielded bool) (*TransactionRecord, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: need at least one input and one output", ErrMalformedTransaction)
	}

	kind := Public
	if shielded {
		kind = Shielded
	}

	rec := &TransactionRecord{Fee: fee, State: Drafted}
	wit := &Witness{}

	for i, v := range inputs {
		note, opening, err := buildNote(v, kind)
		if err != nil {
			return nil, fmt.Errorf("committing input %d: %w", i, err)
		}
		rec.Inputs = append(rec.Inputs, note)
		wit.Inputs = append(wit.Inputs, opening)
	}
	for i, v := range outputs {
		note, opening, err := buildNote(v, kind)
		if err != nil {
			return nil, fmt.Errorf("committing output %d: %w", i, err)
		}
		rec.Outputs = append(rec.Outputs, note)
		wit.Outputs = append(wit.Outputs, opening)
	}

	// The fee is public in both modes: zero blinding, so verifiers can
	// recompute its commitment from the cleartext fee.
	feeB := pedersen.ZeroBlinding()
	rec.FeeCommitment = pedersen.Commit(fee, feeB)
	wit.Fee = balance.Opening{Commitment: rec.FeeCommitment, Value: fee, Blinding: feeB}

	// Range proofs for every slot, inputs then outputs.
	for i, o := range wit.Inputs {
		rp, err := rangeproof.Prove(o.Value, o.Blinding, e.bits)
		if err != nil {
			return nil, fmt.Errorf("proving range of input %d: %w", i, err)
		}
		rec.RangeProofs = append(rec.RangeProofs, rp)
	}
	for i, o := range wit.Outputs {
		rp, err := rangeproof.Prove(o.Value, o.Blinding, e.bits)
		if err != nil {
			return nil, fmt.Errorf("proving range of output %d: %w", i, err)
		}
		rec.RangeProofs = append(rec.RangeProofs, rp)
	}

	bp, err := balance.Prove(wit.Inputs, wit.Outputs, wit.Fee)
	if err != nil {
		return nil, fmt.Errorf("proving balance: %w", err)
	}
	rec.BalanceProof = bp

	rec.ID = rec.computeID()
	rec.Witness = wit
	if err := rec.advance(Proven); err != nil {
		return nil, err
	}
	return rec, nil
}

// Verify re-runs every checker against the record's public fields. It is a
// pure read: calling it twice on the same record yields the same verdict, and
// stored lifecycle state never changes.
func (e *Engine) Verify(rec *TransactionRecord) Verdict {
	var v Verdict
	if rec == nil {
		v.addReason(KindMalformedTransaction)
		return v
	}
	if len(rec.Inputs) == 0 || len(rec.Outputs) == 0 {
		v.addReason(KindMalformedTransaction)
		return v
	}
	if rec.BalanceProof == nil || len(rec.RangeProofs) != len(rec.Inputs)+len(rec.Outputs) {
		v.addReason(KindMalformedTransaction)
		return v
	}

	// Public notes and the fee must match a zero-blinded recommitment of
	// their cleartext.
	zero := pedersen.ZeroBlinding()
	for _, n := range append(append([]Note{}, rec.Inputs...), rec.Outputs...) {
		if n.Kind == Public && !pedersen.Commit(n.Cleartext, zero).Equal(n.Commitment) {
			v.addReason(KindProofVerificationFailed)
		}
	}
	if !pedersen.Commit(rec.Fee, zero).Equal(rec.FeeCommitment) {
		v.addReason(KindProofVerificationFailed)
	}

	slots := append(commitmentList(rec.Inputs), commitmentList(rec.Outputs)...)
	for i, c := range slots {
		if !rangeproof.Verify(c, rec.RangeProofs[i], e.bits) {
			v.addReason(KindProofVerificationFailed)
		}
	}

	if !balance.Verify(commitmentList(rec.Inputs), commitmentList(rec.Outputs), rec.FeeCommitment, rec.BalanceProof) {
		v.addReason(KindBalanceMismatch)
	}

	v.Valid = len(v.Reasons) == 0
	return v
}

// Commit verifies the record, appends its digest to the accumulator, and
// moves it to Committed. A failing record is moved to Rejected and reported.
func (e *Engine) Commit(rec *TransactionRecord) (common.Hash, error) {
	verdict := e.Verify(rec)
	if !verdict.Valid {
		_ = rec.advance(Rejected)
		return common.Hash{}, fmt.Errorf("tx: record %s failed verification: %v", rec.ID.Hex(), verdict.Reasons)
	}
	if err := rec.advance(Verified); err != nil {
		return common.Hash{}, err
	}

	root, index := e.acc.Append(rec.ID)
	rec.LeafIndex = &index
	if err := rec.advance(Committed); err != nil {
		return common.Hash{}, err
	}
	return root, nil
}

// Root returns the current canonical accumulator root.
func (e *Engine) Root() common.Hash {
	return e.acc.Root()
}

// InclusionProof returns the Merkle inclusion proof for a committed record.
func (e *Engine) InclusionProof(rec *TransactionRecord) (*merkle.InclusionProof, error) {
	if rec == nil || rec.LeafIndex == nil {
		return nil, fmt.Errorf("tx: record not committed: %w", merkle.ErrIndexOutOfRange)
	}
	return e.acc.Prove(*rec.LeafIndex)
}

// Demonstration is the diagnostic commit/open/verify bundle: a shielded
// commitment to one amount, a proof of knowledge of its opening, and a range
// proof at the engine bit width.
type Demonstration struct {
	Commitment pedersen.Commitment `json:"commitment"`
	Opening    *sigma.OpeningProof `json:"opening"`
	Range      *rangeproof.Proof   `json:"range"`
}

// DemonstrateCommitment exposes the commitment cycle without constructing a
// full transaction. Fails with the range prover's ValueOutOfRange when the
// amount does not fit the deployment bit width.
func (e *Engine) DemonstrateCommitment(amount uint64) (*Demonstration, error) {
	b, err := pedersen.NewBlinding()
	if err != nil {
		return nil, err
	}
	c := pedersen.Commit(amount, b)

	opening, err := sigma.ProveOpening(amount, b, c)
	if err != nil {
		return nil, err
	}
	rp, err := rangeproof.Prove(amount, b, e.bits)
	if err != nil {
		return nil, fmt.Errorf("proving range of demonstrated amount: %w", err)
	}
	return &Demonstration{Commitment: c, Opening: opening, Range: rp}, nil
}

// VerifyDemonstration checks the opening proof and the range proof of a
// demonstration bundle.
func (e *Engine) VerifyDemonstration(d *Demonstration) bool {
	if d == nil {
		return false
	}
	return sigma.VerifyOpening(d.Commitment, d.Opening) &&
		rangeproof.Verify(d.Commitment, d.Range, e.bits)
}
