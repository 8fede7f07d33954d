package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Simulate a signal-driven trading strategy over historical bars",
	Long: `Backtester replays a time-ordered series of (price, signal)
observations through a position state machine, accounting transaction
costs and compounding capital, and reports the trade ledger, equity
curve and summary statistics.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
