// Package balance proves conservation of value across a transaction: the sum
// of the input commitments equals the sum of the output commitments plus the
// fee commitment.
//
// Because commitments are additively homomorphic, the aggregate
// D = sum(inputs) - sum(outputs) - fee collapses to Commit(0, db) exactly
// when the hidden values net to zero, where db is the corresponding blinding
// difference. The proof is a Schnorr proof of knowledge of db with D = db*H;
// if the values do not cancel, D keeps a G component and no such db exists.
// The verifier recomputes D from the public commitments alone and never sees
// a value or blinding.
package balance

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/shieldtx/internal/transcript"
	"github.com/yourorg/shieldtx/pkg/pedersen"
	"github.com/yourorg/shieldtx/pkg/sigma"
)

var (
	// ErrMalformedTransaction is returned when the input or output list is
	// empty; a transaction needs at least one of each.
	ErrMalformedTransaction = errors.New("balance: transaction needs at least one input and one output")
	// ErrBalanceMismatch is returned at generation time when the witness
	// values do not satisfy inputs = outputs + fee.
	ErrBalanceMismatch = errors.New("balance: input values do not equal output values plus fee")
)

// Opening is the prover-side witness behind one commitment.
type Opening struct {
	Commitment pedersen.Commitment
	Value      uint64
	Blinding   *pedersen.Blinding
}

// Proof attests that an ordered list of input commitments balances against an
// ordered list of output commitments plus a fee commitment.
type Proof struct {
	Dlog *sigma.DlogProof
}

func balanceTranscript(inputs, outputs []pedersen.Commitment, fee pedersen.Commitment) *transcript.Transcript {
	t := transcript.New("shieldtx/balance/v1")
	t.AppendUint64("inputs", uint64(len(inputs)))
	for i := range inputs {
		t.AppendPoint("in", &inputs[i].Point)
	}
	t.AppendUint64("outputs", uint64(len(outputs)))
	for i := range outputs {
		t.AppendPoint("out", &outputs[i].Point)
	}
	t.AppendPoint("fee", &fee.Point)
	return t
}

// aggregate computes D = sum(inputs) - sum(outputs) - fee.
func aggregate(inputs, outputs []pedersen.Commitment, fee pedersen.Commitment) pedersen.Commitment {
	return pedersen.Sum(inputs).Sub(pedersen.Sum(outputs)).Sub(fee)
}

func commitments(openings []Opening) []pedersen.Commitment {
	cs := make([]pedersen.Commitment, len(openings))
	for i, o := range openings {
		cs[i] = o.Commitment
	}
	return cs
}

// Prove checks the witness values balance and produces a proof of knowledge
// of the blinding difference behind the aggregate commitment.
func Prove(inputs, outputs []Opening, fee Opening) (*Proof, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, ErrMalformedTransaction
	}

	// Witness-side balance check; sums in big.Int so large amounts cannot
	// wrap uint64.
	sumIn := new(big.Int)
	for _, o := range inputs {
		sumIn.Add(sumIn, new(big.Int).SetUint64(o.Value))
	}
	sumOut := new(big.Int).SetUint64(fee.Value)
	for _, o := range outputs {
		sumOut.Add(sumOut, new(big.Int).SetUint64(o.Value))
	}
	if sumIn.Cmp(sumOut) != 0 {
		return nil, ErrBalanceMismatch
	}

	// db = sum(input blindings) - sum(output blindings) - fee blinding.
	var db fr.Element
	for _, o := range inputs {
		e := o.Blinding.Element()
		db.Add(&db, &e)
	}
	for _, o := range outputs {
		e := o.Blinding.Element()
		db.Sub(&db, &e)
	}
	feB := fee.Blinding.Element()
	db.Sub(&db, &feB)

	inC := commitments(inputs)
	outC := commitments(outputs)
	d := aggregate(inC, outC, fee.Commitment)

	t := balanceTranscript(inC, outC, fee.Commitment)
	dlog, err := sigma.ProveDlog(t, db, &d.Point)
	if err != nil {
		return nil, err
	}
	return &Proof{Dlog: dlog}, nil
}

// Verify recomputes the aggregate commitment from public data and checks the
// proof against it. Pure verdict; never sees raw values.
func Verify(inputs, outputs []pedersen.Commitment, fee pedersen.Commitment, proof *Proof) bool {
	if proof == nil || proof.Dlog == nil {
		return false
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return false
	}

	d := aggregate(inputs, outputs, fee)
	t := balanceTranscript(inputs, outputs, fee)
	return sigma.VerifyDlog(t, &d.Point, proof.Dlog)
}
