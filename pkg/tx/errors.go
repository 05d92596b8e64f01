package tx

import (
	"errors"

	"github.com/yourorg/shieldtx/pkg/balance"
	"github.com/yourorg/shieldtx/pkg/merkle"
	"github.com/yourorg/shieldtx/pkg/rangeproof"
)

// ErrMalformedTransaction covers structural defects: missing inputs or
// outputs, mismatched proof counts, absent proofs.
var ErrMalformedTransaction = errors.New("tx: malformed transaction")

// ErrorKind labels a failed sub-check in a verification verdict.
type ErrorKind string

const (
	KindValueOutOfRange         ErrorKind = "ValueOutOfRange"
	KindMalformedTransaction    ErrorKind = "MalformedTransaction"
	KindBalanceMismatch         ErrorKind = "BalanceMismatch"
	KindIndexOutOfRange         ErrorKind = "IndexOutOfRange"
	KindProofVerificationFailed ErrorKind = "ProofVerificationFailed"
)

// KindOf maps a generation-time error to its taxonomy kind.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, rangeproof.ErrValueOutOfRange):
		return KindValueOutOfRange
	case errors.Is(err, balance.ErrBalanceMismatch):
		return KindBalanceMismatch
	case errors.Is(err, balance.ErrMalformedTransaction), errors.Is(err, ErrMalformedTransaction):
		return KindMalformedTransaction
	case errors.Is(err, merkle.ErrIndexOutOfRange):
		return KindIndexOutOfRange
	default:
		return KindProofVerificationFailed
	}
}

// Verdict is the outcome of verifying a transaction record. Verification
// always returns a verdict, never aborts; Reasons lists every sub-check that
// failed.
type Verdict struct {
	Valid   bool        `json:"valid"`
	Reasons []ErrorKind `json:"reasons,omitempty"`
}

func (v *Verdict) addReason(kind ErrorKind) {
	for _, r := range v.Reasons {
		if r == kind {
			return
		}
	}
	v.Reasons = append(v.Reasons, kind)
}
