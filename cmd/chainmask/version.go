package main

import (
	"fmt"
	"runtime"

	"github.com/chainmask/chainmask/pkg/matcher"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version of Chainmask and the match engine in use",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	engine := "regexp2"
	if matcher.HyperscanAvailable() {
		engine = "hyperscan"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Chainmask v%s\n", version)
	fmt.Fprintf(out, "Commit: %s\n", commit)
	fmt.Fprintf(out, "Engine: %s\n", engine)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
