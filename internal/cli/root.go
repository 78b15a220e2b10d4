// Package cli holds the startrader command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// NewRootCommand builds the command tree. Configuration comes from the
// environment (optionally a .env file); flags override per-run values.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "startrader",
		Short: "Simulated MT5 trading assistant backend",
		Long: `StarTrader serves the dashboard API and runs simulated backtests.

It provides:
  - A JSON API for strategies, backtests, the journal and settings
  - Synthetic OHLC bars and a randomized trade ledger per backtest
  - A mocked MT5 terminal and an ML confidence gate for signals`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCommand(),
		newBacktestCommand(),
		newSweepCommand(),
		newBarsCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
