package main

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/yourorg/shieldtx/pkg/merkle"
	"github.com/yourorg/shieldtx/pkg/tx"
	"github.com/yourorg/shieldtx/pkg/wallet"
)

// defaultFee mirrors the demo fee rule: 0.1% of the amount, minimum 1.
func defaultFee(amount uint64) uint64 {
	if fee := amount / 1000; fee > 1 {
		return fee
	}
	return 1
}

func (a *app) createWalletCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create-wallet",
		Short: "Create a named wallet with a fresh keypair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := a.store.Wallet(name); ok {
				return fmt.Errorf("wallet %q already exists", name)
			}
			w, err := wallet.New(name)
			if err != nil {
				return err
			}
			a.store.PutWallet(w)
			if err := a.store.Save(); err != nil {
				return err
			}
			a.log.Info().Str("name", name).Stringer("address", w.Address).Msg("wallet created")
			fmt.Printf("address: %s\nbalance: %d\n", w.Address.Hex(), w.Balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Wallet name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) shieldCmd() *cobra.Command {
	var name string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "shield",
		Short: "Move funds from the transparent balance into the shielded pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, ok := a.store.Wallet(name)
			if !ok {
				return fmt.Errorf("wallet %q not found", name)
			}
			if err := w.Shield(amount); err != nil {
				return err
			}
			if err := a.store.Save(); err != nil {
				return err
			}
			fmt.Printf("shielded balance: %d\n", w.ShieldedBalance)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "wallet", "", "Wallet name")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount to shield")
	_ = cmd.MarkFlagRequired("wallet")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *app) sendCmd() *cobra.Command {
	var (
		from, to string
		amount   uint64
		fee      uint64
		shielded bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Create, prove, and commit a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sender, ok := a.store.Wallet(from)
			if !ok {
				return fmt.Errorf("wallet %q not found", from)
			}
			recipient, ok := a.store.Wallet(to)
			if !ok {
				return fmt.Errorf("wallet %q not found", to)
			}
			if fee == 0 {
				fee = defaultFee(amount)
			}

			// The sender's whole pool balance is the single input; the
			// remainder after amount and fee flows back as change.
			pool := sender.Balance
			if shielded {
				pool = sender.ShieldedBalance
			}
			if pool < amount+fee {
				return &wallet.InsufficientFundsError{Required: amount + fee, Available: pool}
			}
			change := pool - amount - fee

			rec, err := a.engine.CreateTransaction([]uint64{pool}, []uint64{amount, change}, fee, shielded)
			if err != nil {
				return err
			}
			root, err := a.engine.Commit(rec)
			if err != nil {
				return err
			}

			if shielded {
				sender.ShieldedBalance = change
			} else {
				sender.Balance = change
			}
			if shielded {
				recipient.AddShieldedFunds(amount)
			} else {
				recipient.AddFunds(amount)
			}

			a.store.PutRecord(rec, a.acc.Leaves())
			if err := a.store.Save(); err != nil {
				return err
			}

			a.log.Info().Stringer("id", rec.ID).Stringer("root", root).
				Bool("shielded", shielded).Uint64("fee", fee).Msg("transaction committed")
			fmt.Printf("id:   %s\nroot: %s\n", rec.ID.Hex(), root.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Sender wallet name")
	cmd.Flags().StringVar(&to, "to", "", "Recipient wallet name")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount to send")
	cmd.Flags().Uint64Var(&fee, "fee", 0, "Fee (default 0.1%, minimum 1)")
	cmd.Flags().BoolVar(&shielded, "shielded", false, "Hide amounts behind commitments")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-verify a stored transaction from its public fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, ok := a.store.Record(id)
			if !ok {
				return fmt.Errorf("transaction %s not found", id)
			}

			verdict := a.engine.Verify(rec)
			out, _ := json.MarshalIndent(verdict, "", "  ")
			fmt.Println(string(out))

			if rec.LeafIndex != nil {
				proof, err := a.engine.InclusionProof(rec)
				if err != nil {
					return err
				}
				included := merkle.Verify(a.engine.Root(), proof)
				fmt.Printf("included in accumulator: %v (leaf %d)\n", included, proof.Index)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "tx", "", "Transaction id (0x-prefixed)")
	_ = cmd.MarkFlagRequired("tx")
	return cmd
}

// proofExport pairs an inclusion proof with the root it verifies against, so
// a third party can re-check membership offline.
type proofExport struct {
	Root  common.Hash            `json:"root"`
	Proof *merkle.InclusionProof `json:"proof"`
}

func (a *app) proofCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "proof",
		Short: "Export the Merkle inclusion proof for a committed transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, ok := a.store.Record(id)
			if !ok {
				return fmt.Errorf("transaction %s not found", id)
			}
			proof, err := a.engine.InclusionProof(rec)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(proofExport{Root: a.engine.Root(), Proof: proof}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "tx", "", "Transaction id (0x-prefixed)")
	_ = cmd.MarkFlagRequired("tx")
	return cmd
}

func (a *app) balanceCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show wallet balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, ok := a.store.Wallet(name)
			if !ok {
				return fmt.Errorf("wallet %q not found", name)
			}
			fmt.Printf("transparent: %d\nshielded:    %d\ntotal:       %d\n",
				w.Balance, w.ShieldedBalance, w.TotalBalance())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "wallet", "", "Wallet name")
	_ = cmd.MarkFlagRequired("wallet")
	return cmd
}

func (a *app) demoCommitmentCmd() *cobra.Command {
	var amount uint64
	cmd := &cobra.Command{
		Use:   "demo-commitment",
		Short: "Run the commit/open/verify cycle for one amount",
		RunE: func(cmd *cobra.Command, _ []string) error {
			demo, err := a.engine.DemonstrateCommitment(amount)
			if err != nil {
				return err
			}
			fmt.Printf("commitment: 0x%x\n", demo.Commitment.Bytes())
			fmt.Printf("opening proof valid: %v\n", a.engine.VerifyDemonstration(demo))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount to commit to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *app) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the accumulator state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Printf("root:   %s\nheight: %d\nleaves: %d\n",
				a.acc.Root().Hex(), a.acc.Height(), a.acc.Len())
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records := a.store.Records()
			if len(records) == 0 {
				fmt.Println("no transactions stored")
				return nil
			}
			for _, rec := range records {
				kind := "public"
				if len(rec.Inputs) > 0 && rec.Inputs[0].Kind == tx.Shielded {
					kind = "shielded"
				}
				fmt.Printf("%s  %-8s  fee=%d  state=%s\n", rec.ID.Hex(), kind, rec.Fee, rec.State)
			}
			return nil
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset all stored state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			a.log.Info().Msg("storage cleared")
			return nil
		},
	}
}
