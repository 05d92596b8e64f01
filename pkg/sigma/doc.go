// Package sigma implements the non-interactive Sigma protocols the proof
// subsystem is built from: Schnorr proofs of commitment openings, knowledge
// of discrete log proofs, and 2-way OR proofs that a commitment opens to a
// bit. All protocols are made non-interactive with the Fiat-Shamir transform
// over a Keccak256 transcript; verification is a pure predicate over the
// proof and the public statement.
package sigma
