package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lcopilot",
	Short: "LC Copilot - trade-finance compliance rule engine",
	Long: `LC Copilot is a rule resolution and evaluation engine for trade-finance
document compliance.

It detects the governing rulebook (UCP 600, ISP98, URDG 758, URC 522 and
their supplements) from the presented documents, loads the active
jurisdiction-scoped ruleset and evaluates every rule against the extracted
document data, producing a compliance report with per-rule outcomes and
ruleset provenance.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
