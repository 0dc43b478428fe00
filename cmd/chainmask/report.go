package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/chainmask/chainmask/pkg/grammar"
	"github.com/chainmask/chainmask/pkg/sarif"
	"github.com/chainmask/chainmask/pkg/store"
	"github.com/chainmask/chainmask/pkg/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	reportDatastore string
	reportFormat    string
	reportColor     string
)

// Human output shows every finding but caps the per-finding match list.
const maxMatchesShown = 3

// styles holds color formatters for the human report
type styles struct {
	findingHeading *color.Color
	id             *color.Color
	grammarName    *color.Color
	heading        *color.Color
	match          *color.Color
	metadata       *color.Color
}

// newStyles creates color formatters for report output
// enabled=false respects --color never and the NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		findingHeading: color.New(color.Bold, color.FgHiWhite),
		id:             color.New(color.FgHiGreen),
		grammarName:    color.New(color.Bold, color.FgHiBlue),
		heading:        color.New(color.Bold),
		match:          color.New(color.FgYellow),
		metadata:       color.New(color.FgHiBlue),
	}

	if !enabled {
		// Disable colors on all formatters
		s.findingHeading.DisableColor()
		s.id.DisableColor()
		s.grammarName.DisableColor()
		s.heading.DisableColor()
		s.match.DisableColor()
		s.metadata.DisableColor()
	}

	return s
}

// snippetParts holds separated snippet components for colored output
type snippetParts struct {
	prefix   string // "..." if truncated at start
	before   string
	matching string
	after    string
	suffix   string // "..." if truncated at end
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from scan results",
	Long:  "Read findings from a results database and output a summary report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "chainmask.db", "Path to results database or its directory")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, sarif")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
}

func runReport(cmd *cobra.Command, args []string) error {
	// Determine store path
	storePath := reportDatastore

	// Check if it's :memory: (invalid for report)
	if storePath == ":memory:" {
		return fmt.Errorf("cannot report from in-memory store")
	}

	info, err := os.Stat(storePath)
	if err != nil {
		return fmt.Errorf("datastore not found: %s", storePath)
	}
	if info.IsDir() {
		// Directory given - open the default database inside it
		storePath = filepath.Join(storePath, "chainmask.db")
	}

	// Open store
	s, err := store.New(store.Config{
		Path: storePath,
	})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	// Get findings
	findings, err := s.GetFindings()
	if err != nil {
		return fmt.Errorf("retrieving findings: %w", err)
	}

	// Get all matches for additional context
	matches, err := s.GetAllMatches()
	if err != nil {
		return fmt.Errorf("retrieving matches: %w", err)
	}

	// Matches carry the content FindingID of the finding they belong to.
	matchesByFinding := make(map[string][]*types.Match)
	for _, m := range matches {
		matchesByFinding[m.FindingID] = append(matchesByFinding[m.FindingID], m)
	}

	// Grammar metadata for names and SARIF rules: prefer the pack recorded
	// at scan time, fall back to the builtin pack for databases without one.
	grammars, err := s.GetGrammars()
	if err != nil {
		return fmt.Errorf("retrieving grammars: %w", err)
	}
	if len(grammars) == 0 {
		loader := grammar.NewLoader()
		grammars, err = loader.LoadBuiltinGrammars()
		if err != nil {
			return fmt.Errorf("loading grammars: %w", err)
		}
	}
	grammarsByID := make(map[string]*types.Grammar, len(grammars))
	for _, g := range grammars {
		grammarsByID[g.ID] = g
	}

	// Output based on format
	switch reportFormat {
	case "json":
		return outputReportJSON(cmd, findings, matchesByFinding)
	case "human":
		return outputReportHuman(cmd, s, findings, matchesByFinding, grammarsByID, storePath)
	case "sarif":
		return outputReportSARIF(cmd, s, grammars, matches)
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// formatSnippetWithParts truncates a snippet to maxLen chars, centering the
// window around the matched text, and keeps the components separated so the
// matched portion can be colored.
func formatSnippetWithParts(before, matching, after []byte, maxLen int) snippetParts {
	full := string(before) + string(matching) + string(after)

	// Short snippet - no truncation needed
	if len(full) <= maxLen {
		return snippetParts{
			before:   string(before),
			matching: string(matching),
			after:    string(after),
		}
	}

	// Find where the match sits in the combined string
	matchStart := len(before)
	matchEnd := matchStart + len(matching)
	matchLen := len(matching)

	// If match itself exceeds maxLen, show truncated match
	if matchLen >= maxLen {
		return snippetParts{
			prefix:   "...",
			matching: string(matching[:maxLen-6]),
			suffix:   "...",
		}
	}

	// Calculate how much context we can show around the match
	availableContext := maxLen - matchLen - 6 // reserve 6 for potential "..." on each side
	halfContext := availableContext / 2

	// Determine start and end positions
	start := matchStart - halfContext
	end := matchEnd + halfContext

	// Adjust if we're near boundaries
	if start < 0 {
		end -= start // shift end right by the amount we're short on left
		start = 0
	}
	if end > len(full) {
		start -= (end - len(full)) // shift start left by amount we're over on right
		if start < 0 {
			start = 0
		}
		end = len(full)
	}

	// Build parts with truncation indicators
	parts := snippetParts{}

	if start > 0 {
		parts.prefix = "..."
	}

	if matchStart > start {
		parts.before = full[start:matchStart]
	}
	parts.matching = full[matchStart:matchEnd]
	if end > matchEnd {
		parts.after = full[matchEnd:end]
	}

	if end < len(full) {
		parts.suffix = "..."
	}

	return parts
}

func outputReportJSON(cmd *cobra.Command, findings []*types.Finding, matchesByFinding map[string][]*types.Match) error {
	// Attach matches to their findings
	for _, f := range findings {
		f.Matches = matchesByFinding[f.ID]
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(findings)
}

// configureColor applies the --color flag to the global color state.
func configureColor() {
	switch reportColor {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default: // "auto"
		// Check if stdout is a TTY and NO_COLOR is not set
		if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		} else {
			color.NoColor = false
		}
	}
}

func outputReportHuman(cmd *cobra.Command, s store.Store, findings []*types.Finding, matchesByFinding map[string][]*types.Match, grammarsByID map[string]*types.Grammar, storePath string) error {
	out := cmd.OutOrStdout()

	configureColor()
	st := newStyles(!color.NoColor)

	// Summary header
	fmt.Fprintf(out, "%s\n", st.heading.Sprint("=== Chainmask Report ==="))
	fmt.Fprintf(out, "Datastore: %s\n", storePath)
	fmt.Fprintf(out, "Total findings: %d\n", len(findings))

	if len(findings) == 0 {
		return nil
	}

	// Per-grammar counts, most findings first
	counts := make(map[string]int)
	for _, f := range findings {
		counts[f.GrammarID]++
	}
	grammarIDs := make([]string, 0, len(counts))
	for id := range counts {
		grammarIDs = append(grammarIDs, id)
	}
	sort.Slice(grammarIDs, func(i, j int) bool {
		if counts[grammarIDs[i]] != counts[grammarIDs[j]] {
			return counts[grammarIDs[i]] > counts[grammarIDs[j]]
		}
		return grammarIDs[i] < grammarIDs[j]
	})

	fmt.Fprintf(out, "\n%s\n", st.heading.Sprint("By Grammar:"))
	for _, id := range grammarIDs {
		fmt.Fprintf(out, "  %-28s %d findings\n", id, counts[id])
	}

	fmt.Fprintf(out, "\n%s\n\n", st.heading.Sprint("Findings:"))

	totalFindings := len(findings)
	for i, f := range findings {
		// Finding header with its content-based ID
		fmt.Fprintf(out, "%s (%s %s)\n",
			st.findingHeading.Sprintf("Finding %d/%d", i+1, totalFindings),
			st.heading.Sprint("id"),
			st.id.Sprint(f.ID))

		grammarName := f.GrammarID
		if g, ok := grammarsByID[f.GrammarID]; ok {
			grammarName = g.Name
		}
		fmt.Fprintf(out, "%s %s\n", st.heading.Sprint("Grammar:"), st.grammarName.Sprint(grammarName))
		fmt.Fprintf(out, "%s %s\n", st.heading.Sprint("Family:"), st.metadata.Sprint(string(f.Family)))

		form := ""
		if f.Truncated {
			form = " (truncated form)"
		}
		fmt.Fprintf(out, "%s %s%s\n", st.heading.Sprint("Value:"), st.match.Sprint(f.Value), form)

		// Matches for this finding
		findingMatches := matchesByFinding[f.ID]
		if len(findingMatches) > maxMatchesShown {
			fmt.Fprintf(out, "Showing %d/%d matches:\n", maxMatchesShown, len(findingMatches))
			findingMatches = findingMatches[:maxMatchesShown]
		}

		for k, match := range findingMatches {
			fmt.Fprintf(out, "\n    %s (%s %s)\n",
				st.heading.Sprintf("Match %d/%d", k+1, len(matchesByFinding[f.ID])),
				st.heading.Sprint("id"),
				st.id.Sprint(match.StructuralID))

			// File path from provenance
			prov, err := s.GetProvenance(match.BlobID)
			if err == nil && prov != nil {
				fmt.Fprintf(out, "    %s %s\n",
					st.heading.Sprint("File:"),
					st.metadata.Sprint(prov.Path()))
			}

			fmt.Fprintf(out, "    %s %s\n",
				st.heading.Sprint("Blob:"),
				st.metadata.Sprint(match.BlobID.Hex()))

			if match.Location.Source.Start.Line > 0 {
				fmt.Fprintf(out, "    %s %d:%d-%d:%d\n",
					st.heading.Sprint("Lines:"),
					match.Location.Source.Start.Line, match.Location.Source.Start.Column,
					match.Location.Source.End.Line, match.Location.Source.End.Column)
			}

			// Context snippet with colored matching portion
			parts := formatSnippetWithParts(match.Snippet.Before, match.Snippet.Matching, match.Snippet.After, 500)
			if parts.prefix != "" || parts.before != "" || parts.matching != "" || parts.after != "" || parts.suffix != "" {
				fmt.Fprintf(out, "\n        %s%s%s%s%s\n",
					parts.prefix,
					parts.before,
					st.match.Sprint(parts.matching),
					parts.after,
					parts.suffix)
			}
		}

		fmt.Fprintf(out, "\n\n")
	}

	return nil
}

// outputReportSARIF renders stored matches as a SARIF 2.1.0 report.
func outputReportSARIF(cmd *cobra.Command, s store.Store, grammars []*types.Grammar, matches []*types.Match) error {
	report := sarif.NewReport()

	for _, g := range grammars {
		report.AddGrammar(g)
	}

	// Cache provenance by blob ID to avoid repeated queries
	provenanceCache := make(map[types.BlobID]string)

	for _, match := range matches {
		filePath, ok := provenanceCache[match.BlobID]
		if !ok {
			prov, err := s.GetProvenance(match.BlobID)
			if err != nil {
				// No provenance recorded, fall back to the blob ID
				filePath = match.BlobID.Hex()
			} else {
				filePath = prov.Path()
			}
			provenanceCache[match.BlobID] = filePath
		}

		report.AddResult(match, filePath)
	}

	jsonBytes, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}

	if _, err := cmd.OutOrStdout().Write(jsonBytes); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}

	return nil
}
