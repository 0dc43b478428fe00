package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/chainmask/chainmask/pkg/grammar"
	"github.com/chainmask/chainmask/pkg/types"
	"github.com/spf13/cobra"
)

var (
	grammarsPath   string
	grammarsFormat string
)

var grammarsCmd = &cobra.Command{
	Use:   "grammars",
	Short: "Manage format grammars",
	Long:  "Commands for listing and inspecting format grammars",
}

var grammarsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available grammars",
	Long:  "Display all available format grammars with their IDs, names, and families",
	RunE:  runGrammarsList,
}

func init() {
	grammarsCmd.AddCommand(grammarsListCmd)
	grammarsListCmd.Flags().StringVar(&grammarsPath, "grammars", "", "Path to custom grammars file")
	grammarsListCmd.Flags().StringVar(&grammarsFormat, "format", "table", "Output format: table, json")
}

func runGrammarsList(cmd *cobra.Command, args []string) error {
	loader := grammar.NewLoader()

	var grammars []*types.Grammar
	var err error

	// Load grammars (builtin or custom)
	if grammarsPath != "" {
		grammars, err = loader.LoadGrammarsFile(grammarsPath)
		if err != nil {
			return fmt.Errorf("loading grammars from %s: %w", grammarsPath, err)
		}
	} else {
		grammars, err = loader.LoadBuiltinGrammars()
		if err != nil {
			return fmt.Errorf("loading builtin grammars: %w", err)
		}
	}

	// Output based on format
	switch grammarsFormat {
	case "json":
		return outputGrammarsJSON(cmd, grammars)
	case "table":
		return outputGrammarsTable(cmd, grammars)
	default:
		return fmt.Errorf("unknown output format: %s", grammarsFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func outputGrammarsJSON(cmd *cobra.Command, grammars []*types.Grammar) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(grammars)
}

func outputGrammarsTable(cmd *cobra.Command, grammars []*types.Grammar) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tFamily\tForm\n")
	fmt.Fprintf(w, "--\t----\t------\t----\n")

	for _, g := range grammars {
		form := "full"
		if g.Truncated {
			form = "truncated"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Name, g.Family, form)
	}

	return nil
}
