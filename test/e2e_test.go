package test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourorg/shieldtx/internal/store"
	"github.com/yourorg/shieldtx/pkg/merkle"
	"github.com/yourorg/shieldtx/pkg/tx"
	"github.com/yourorg/shieldtx/pkg/wallet"
)

// Full workflow across process boundaries: Alice shields funds, sends a
// shielded payment to Bob, state is persisted, and a second process rebuilds
// the accumulator and re-verifies everything from public data alone.
func TestShieldedPaymentEndToEnd(t *testing.T) {
	dir := t.TempDir()

	// --- first process: create and commit ---
	s, err := store.Open(dir)
	require.NoError(t, err)

	alice, err := wallet.New("alice")
	require.NoError(t, err)
	require.NoError(t, alice.Shield(500))
	bob, err := wallet.New("bob")
	require.NoError(t, err)

	acc := s.Accumulator()
	engine, err := tx.NewEngine(acc, 16)
	require.NoError(t, err)

	const (
		amount = 100
		fee    = 5
	)
	change := alice.ShieldedBalance - amount - fee

	rec, err := engine.CreateTransaction(
		[]uint64{alice.ShieldedBalance},
		[]uint64{amount, change},
		fee,
		true,
	)
	require.NoError(t, err)

	sig, err := alice.SignRecord(rec.ID)
	require.NoError(t, err)
	require.True(t, wallet.VerifyRecordSignature(alice.Address, rec.ID, sig))

	root, err := engine.Commit(rec)
	require.NoError(t, err)
	require.Equal(t, tx.Committed, rec.State)

	require.NoError(t, alice.SpendShielded(amount + fee))
	bob.AddShieldedFunds(amount)
	require.Equal(t, uint64(change), alice.ShieldedBalance)
	require.Equal(t, uint64(amount), bob.ShieldedBalance)

	s.PutRecord(rec, acc.Leaves())
	s.PutWallet(alice)
	s.PutWallet(bob)
	require.NoError(t, s.Save())

	// --- second process: reload and audit ---
	s2, err := store.Open(dir)
	require.NoError(t, err)

	rebuilt := s2.Accumulator()
	require.Equal(t, root, rebuilt.Root())

	auditor, err := tx.NewEngine(rebuilt, 16)
	require.NoError(t, err)

	got, ok := s2.Record(rec.ID.Hex())
	require.True(t, ok)
	require.Nil(t, got.Witness) // witness data never reaches disk

	verdict := auditor.Verify(got)
	require.True(t, verdict.Valid)
	require.Empty(t, verdict.Reasons)

	proof, err := auditor.InclusionProof(got)
	require.NoError(t, err)
	require.True(t, merkle.Verify(rebuilt.Root(), proof))

	restored, ok := s2.Wallet("alice")
	require.True(t, ok)
	require.Equal(t, uint64(change), restored.ShieldedBalance)
}

// A second committed transaction moves the root; both records stay provable
// against the new root.
func TestAccumulatorGrowsAcrossTransactions(t *testing.T) {
	acc := merkle.New()
	engine, err := tx.NewEngine(acc, 16)
	require.NoError(t, err)

	first, err := engine.CreateTransaction([]uint64{500}, []uint64{100, 395}, 5, true)
	require.NoError(t, err)
	rootA, err := engine.Commit(first)
	require.NoError(t, err)

	second, err := engine.CreateTransaction([]uint64{395}, []uint64{390}, 5, true)
	require.NoError(t, err)
	rootB, err := engine.Commit(second)
	require.NoError(t, err)
	require.NotEqual(t, rootA, rootB)

	for _, rec := range []*tx.TransactionRecord{first, second} {
		proof, err := engine.InclusionProof(rec)
		require.NoError(t, err)
		require.True(t, merkle.Verify(rootB, proof))
	}
}
