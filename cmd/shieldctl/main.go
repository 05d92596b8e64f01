// Command shieldctl is the demo surface over the shielded transaction
// engine: wallet bookkeeping, transaction creation and verification, the
// commitment diagnostic, and accumulator inspection.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/shieldtx/internal/store"
	"github.com/yourorg/shieldtx/pkg/merkle"
	"github.com/yourorg/shieldtx/pkg/tx"
)

type app struct {
	log    zerolog.Logger
	store  *store.Store
	acc    *merkle.Accumulator
	engine *tx.Engine
}

func main() {
	var (
		home    string
		bits    int
		verbose bool
	)

	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "shieldctl",
		Short:         "Shielded transactions with commitment, range, and balance proofs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			a.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()

			if home == "" {
				_ = godotenv.Load()
				home = os.Getenv("SHIELDTX_HOME")
				if home == "" {
					home = ".shieldtx"
				}
			}

			s, err := store.Open(home)
			if err != nil {
				return err
			}
			a.store = s
			a.acc = s.Accumulator()

			engine, err := tx.NewEngine(a.acc, bits)
			if err != nil {
				return err
			}
			a.engine = engine

			a.log.Debug().Str("home", home).Int("bits", bits).
				Uint64("leaves", a.acc.Len()).Msg("state loaded")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&home, "home", "", "Data directory (or SHIELDTX_HOME)")
	rootCmd.PersistentFlags().IntVar(&bits, "bits", tx.DefaultBits, "Range proof bit width")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		a.createWalletCmd(),
		a.shieldCmd(),
		a.sendCmd(),
		a.verifyCmd(),
		a.proofCmd(),
		a.balanceCmd(),
		a.demoCommitmentCmd(),
		a.treeCmd(),
		a.listCmd(),
		a.clearCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		a.log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
