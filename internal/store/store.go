// Package store persists application state between CLI invocations: wallets,
// transaction records (public fields only), and the ordered accumulator leaf
// sequence the canonical tree is rebuilt from.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/shieldtx/pkg/merkle"
	"github.com/yourorg/shieldtx/pkg/tx"
	"github.com/yourorg/shieldtx/pkg/wallet"
)

const (
	transactionsFile = "transactions.json"
	leavesFile       = "accumulator.json"
	walletsFile      = "wallets.json"
)

// Store holds the on-disk state of one data directory. Witness data never
// reaches disk: TransactionRecord excludes it from serialization.
type Store struct {
	dir string

	Transactions map[string]*tx.TransactionRecord
	Leaves       []common.Hash
	Wallets      map[string]*wallet.Wallet
}

// Open loads the state files under dir, creating the directory and starting
// empty where files are missing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	s := &Store{
		dir:          dir,
		Transactions: make(map[string]*tx.TransactionRecord),
		Wallets:      make(map[string]*wallet.Wallet),
	}
	if err := loadJSON(filepath.Join(dir, transactionsFile), &s.Transactions); err != nil {
		return nil, err
	}
	if err := loadJSON(filepath.Join(dir, leavesFile), &s.Leaves); err != nil {
		return nil, err
	}
	if err := loadJSON(filepath.Join(dir, walletsFile), &s.Wallets); err != nil {
		return nil, err
	}
	return s, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Save writes all state files.
func (s *Store) Save() error {
	if err := writeJSON(filepath.Join(s.dir, transactionsFile), s.Transactions); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(s.dir, leavesFile), s.Leaves); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.dir, walletsFile), s.Wallets)
}

// PutRecord stores a record and adopts the given leaf sequence as the new
// canonical one.
func (s *Store) PutRecord(rec *tx.TransactionRecord, leaves []common.Hash) {
	s.Transactions[rec.ID.Hex()] = rec
	s.Leaves = leaves
}

// Record looks up a record by 0x-prefixed id.
func (s *Store) Record(id string) (*tx.TransactionRecord, bool) {
	rec, ok := s.Transactions[id]
	return rec, ok
}

// Records returns all records ordered by id for stable listings.
func (s *Store) Records() []*tx.TransactionRecord {
	ids := make([]string, 0, len(s.Transactions))
	for id := range s.Transactions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*tx.TransactionRecord, len(ids))
	for i, id := range ids {
		out[i] = s.Transactions[id]
	}
	return out
}

// PutWallet stores a wallet under its name.
func (s *Store) PutWallet(w *wallet.Wallet) {
	s.Wallets[w.Name] = w
}

// Wallet looks up a wallet by name.
func (s *Store) Wallet(name string) (*wallet.Wallet, bool) {
	w, ok := s.Wallets[name]
	return w, ok
}

// Accumulator rebuilds the canonical tree from the persisted leaf sequence.
func (s *Store) Accumulator() *merkle.Accumulator {
	return merkle.NewFromLeaves(s.Leaves)
}

// Clear drops all state and persists the empty files.
func (s *Store) Clear() error {
	s.Transactions = make(map[string]*tx.TransactionRecord)
	s.Leaves = nil
	s.Wallets = make(map[string]*wallet.Wallet)
	return s.Save()
}
