package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainmask/chainmask/pkg/scanner"
	"github.com/chainmask/chainmask/pkg/serve"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as streaming server for editor and pipeline integration",
	Long: `Run Chainmask as a long-lived streaming server that accepts detection
and masking requests via stdin and writes results to stdout using NDJSON.

This mode is designed for embedding in editors, redaction pipelines, and the
browser extension host. The process loads the grammar pack once at startup
and handles requests until stdin closes or SIGTERM is received.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Create scanner core with the builtin grammar pack
	core, err := scanner.NewCore("builtin", nil)
	if err != nil {
		return err
	}
	defer core.Close()

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	// Create and run server
	srv := serve.NewServer(core, cmd.InOrStdin(), cmd.OutOrStdout())
	return srv.Run(ctx)
}
