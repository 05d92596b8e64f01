// Package wallet provides the account bookkeeping layer that feeds resolved
// balances into the transaction engine as witness values. It tracks a public
// and a shielded balance per wallet and signs record digests with a
// secp256k1 key.
package wallet

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// StartingBalance is the demo-grade transparent balance a fresh wallet opens
// with.
const StartingBalance = 1000

// InsufficientFundsError reports a spend exceeding the available balance.
type InsufficientFundsError struct {
	Required  uint64
	Available uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("wallet: insufficient funds: required %d, available %d", e.Required, e.Available)
}

// Wallet is one named account with a transparent and a shielded balance.
// The private key is held in memory unencrypted; production use would wrap
// it in a keystore.
type Wallet struct {
	Name            string
	Address         common.Address
	Balance         uint64
	ShieldedBalance uint64

	key *ecdsa.PrivateKey
}

// New generates a wallet with a fresh secp256k1 keypair.
func New(name string) (*Wallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Wallet{
		Name:    name,
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Balance: StartingBalance,
		key:     key,
	}, nil
}

func (w *Wallet) AddFunds(amount uint64)         { w.Balance += amount }
func (w *Wallet) AddShieldedFunds(amount uint64) { w.ShieldedBalance += amount }

// Spend debits the transparent balance.
func (w *Wallet) Spend(amount uint64) error {
	if w.Balance < amount {
		return &InsufficientFundsError{Required: amount, Available: w.Balance}
	}
	w.Balance -= amount
	return nil
}

// SpendShielded debits the shielded balance.
func (w *Wallet) SpendShielded(amount uint64) error {
	if w.ShieldedBalance < amount {
		return &InsufficientFundsError{Required: amount, Available: w.ShieldedBalance}
	}
	w.ShieldedBalance -= amount
	return nil
}

// Shield moves funds from the transparent balance into the shielded pool.
func (w *Wallet) Shield(amount uint64) error {
	if err := w.Spend(amount); err != nil {
		return err
	}
	w.ShieldedBalance += amount
	return nil
}

func (w *Wallet) TotalBalance() uint64 {
	return w.Balance + w.ShieldedBalance
}

// SignRecord signs a transaction record digest.
func (w *Wallet) SignRecord(id common.Hash) ([]byte, error) {
	return crypto.Sign(id[:], w.key)
}

// VerifyRecordSignature checks that sig over id recovers addr.
func VerifyRecordSignature(addr common.Address, id common.Hash, sig []byte) bool {
	pub, err := crypto.SigToPub(id[:], sig)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == addr
}

type walletJSON struct {
	Name            string         `json:"name"`
	Address         common.Address `json:"address"`
	PrivateKey      string         `json:"privateKey"`
	Balance         uint64         `json:"balance"`
	ShieldedBalance uint64         `json:"shieldedBalance"`
}

func (w *Wallet) MarshalJSON() ([]byte, error) {
	return json.Marshal(walletJSON{
		Name:            w.Name,
		Address:         w.Address,
		PrivateKey:      hexutil.Encode(crypto.FromECDSA(w.key)),
		Balance:         w.Balance,
		ShieldedBalance: w.ShieldedBalance,
	})
}

func (w *Wallet) UnmarshalJSON(data []byte) error {
	var aux walletJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	raw, err := hexutil.Decode(aux.PrivateKey)
	if err != nil {
		return err
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return err
	}
	w.Name = aux.Name
	w.Address = aux.Address
	w.Balance = aux.Balance
	w.ShieldedBalance = aux.ShieldedBalance
	w.key = key
	return nil
}
