package main

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "chainmask",
	Short: "Chainmask - blockchain identifier detector and masker",
	Long: `Chainmask finds blockchain identifiers in code, files, and git history:
wallet addresses, transaction hashes, ENS names, and the truncated display
forms wallets produce, across Ethereum, Bitcoin, and Solana.

Detected identifiers can be reported, exported as JSON or SARIF, or masked
in place before logs and documents are published.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(maskCmd)
	rootCmd.AddCommand(grammarsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mergeCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
