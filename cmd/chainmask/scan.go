package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chainmask/chainmask/pkg/enum"
	"github.com/chainmask/chainmask/pkg/grammar"
	"github.com/chainmask/chainmask/pkg/matcher"
	"github.com/chainmask/chainmask/pkg/sarif"
	"github.com/chainmask/chainmask/pkg/store"
	"github.com/chainmask/chainmask/pkg/types"
	"github.com/spf13/cobra"
)

var (
	scanGrammarsPath  string
	scanInclude       string
	scanExclude       string
	scanNoTruncated   bool
	scanOutputPath    string
	scanOutputFormat  string
	scanGit           bool
	scanNoGit         bool
	scanRef           string
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanExtract       bool
	scanContextLines  int
	scanIncremental   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Scan a target for blockchain identifiers",
	Long:  "Scan a file, directory, or git repository for blockchain identifiers using format grammars",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanGrammarsPath, "grammars", "", "Path to custom grammars file")
	scanCmd.Flags().StringVar(&scanInclude, "include", "", "Include grammars matching regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanExclude, "exclude", "", "Exclude grammars matching regex pattern (comma-separated)")
	scanCmd.Flags().BoolVar(&scanNoTruncated, "no-truncated", false, "Skip grammars for truncated display forms")
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "chainmask.db", "Output database path")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: json, sarif, human")
	scanCmd.Flags().BoolVar(&scanGit, "git", false, "Treat target as git repository (enumerate git history)")
	scanCmd.Flags().BoolVar(&scanNoGit, "no-git", false, "Scan the working tree even when the target is a git repository")
	scanCmd.Flags().StringVar(&scanRef, "ref", "", "Git revision to enumerate (defaults to HEAD, implies --git)")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to scan (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().BoolVar(&scanExtract, "extract", false, "Extract text from xlsx, docx, and pdf files")
	scanCmd.Flags().IntVar(&scanContextLines, "context-lines", 3, "Lines of context before/after matches (0 to disable)")
	scanCmd.Flags().BoolVar(&scanIncremental, "incremental", false, "Skip already-scanned blobs")
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]

	// Validate target exists
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("target does not exist: %s", target)
	}

	// Load grammars
	grammars, err := loadGrammars(scanGrammarsPath, scanInclude, scanExclude)
	if err != nil {
		return fmt.Errorf("loading grammars: %w", err)
	}

	// Create matcher
	m, err := matcher.New(matcher.Config{
		Grammars:     grammars,
		ContextLines: scanContextLines,
	})
	if err != nil {
		return fmt.Errorf("creating matcher: %w", err)
	}
	defer m.Close()

	// Create store
	s, err := store.New(store.Config{
		Path: scanOutputPath,
	})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	// Record the grammar pack alongside results so report can render
	// grammar metadata without re-loading the pack this scan ran with.
	for _, g := range grammars {
		if err := s.AddGrammar(g); err != nil {
			return fmt.Errorf("storing grammar: %w", err)
		}
	}

	// Create enumerator
	enumerator, err := createEnumerator(cmd, target)
	if err != nil {
		return fmt.Errorf("creating enumerator: %w", err)
	}

	// Scan
	ctx := context.Background()
	matchCount := 0
	findingCount := 0
	skippedCount := 0

	err = enumerator.Enumerate(ctx, func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "scanning %s\n", prov.Path())
		}

		// Check for incremental scanning
		if scanIncremental {
			exists, err := s.BlobExists(blobID)
			if err != nil {
				return fmt.Errorf("checking blob: %w", err)
			}
			if exists {
				skippedCount++
				return nil
			}
		}

		// Store blob
		if err := s.AddBlob(blobID, int64(len(content))); err != nil {
			return fmt.Errorf("storing blob: %w", err)
		}

		// Store provenance
		if err := s.AddProvenance(blobID, prov); err != nil {
			return fmt.Errorf("storing provenance: %w", err)
		}

		// Match content
		matches, err := m.MatchWithBlobID(content, blobID)
		if err != nil {
			return fmt.Errorf("matching content: %w", err)
		}

		// Store matches and findings
		for _, match := range matches {
			matchCount++

			if err := s.AddMatch(match); err != nil {
				return fmt.Errorf("storing match: %w", err)
			}

			// Findings deduplicate by content: the same identifier in ten
			// places is one finding with its FindingID shared by all matches.
			exists, err := s.FindingExists(match.FindingID)
			if err != nil {
				return fmt.Errorf("checking finding: %w", err)
			}

			if !exists {
				findingCount++
				finding := &types.Finding{
					ID:        match.FindingID,
					GrammarID: match.GrammarID,
					Family:    match.Family,
					Truncated: match.Truncated,
					Value:     match.Value,
				}
				if err := s.AddFinding(finding); err != nil {
					return fmt.Errorf("storing finding: %w", err)
				}
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	// Output summary (to stderr when using json/sarif format to keep stdout pure JSON)
	summaryOut := cmd.OutOrStdout()
	if scanOutputFormat == "json" || scanOutputFormat == "sarif" {
		summaryOut = cmd.ErrOrStderr()
	}
	if scanIncremental {
		fmt.Fprintf(summaryOut, "Scan complete: %d matches, %d findings (%d blobs skipped)\n", matchCount, findingCount, skippedCount)
	} else {
		fmt.Fprintf(summaryOut, "Scan complete: %d matches, %d findings\n", matchCount, findingCount)
	}
	fmt.Fprintf(summaryOut, "Results stored in: %s\n", scanOutputPath)

	// Get results for output
	if scanOutputFormat == "json" {
		// JSON format outputs matches with full snippet data
		matches, err := s.GetAllMatches()
		if err != nil {
			return fmt.Errorf("retrieving matches: %w", err)
		}
		return outputMatches(cmd, matches)
	}

	if scanOutputFormat == "sarif" {
		// SARIF format outputs matches with grammar metadata
		matches, err := s.GetAllMatches()
		if err != nil {
			return fmt.Errorf("retrieving matches: %w", err)
		}
		return outputSARIF(cmd, s, grammars, matches)
	}

	// Human format outputs findings (deduplicated)
	findings, err := s.GetFindings()
	if err != nil {
		return fmt.Errorf("retrieving findings: %w", err)
	}
	return outputFindings(cmd, findings)
}

// =============================================================================
// HELPERS
// =============================================================================

func loadGrammars(path, include, exclude string) ([]*types.Grammar, error) {
	loader := grammar.NewLoader()

	var grammars []*types.Grammar
	var err error

	if path != "" {
		// Custom grammars from file
		grammars, err = loader.LoadGrammarsFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		// Builtin grammar pack
		grammars, err = loader.LoadBuiltinGrammars()
		if err != nil {
			return nil, err
		}
	}

	// Apply filtering if patterns specified
	if include != "" || exclude != "" {
		config := grammar.FilterConfig{
			Include: grammar.ParsePatterns(include),
			Exclude: grammar.ParsePatterns(exclude),
		}
		grammars, err = grammar.Filter(grammars, config)
		if err != nil {
			return nil, fmt.Errorf("filtering grammars: %w", err)
		}
	}

	if scanNoTruncated {
		grammars = grammar.ExcludeTruncated(grammars)
	}

	return grammars, nil
}

func createEnumerator(cmd *cobra.Command, target string) (enum.Enumerator, error) {
	if scanGit && scanNoGit {
		return nil, fmt.Errorf("--git and --no-git are mutually exclusive")
	}
	if scanRef != "" && scanNoGit {
		return nil, fmt.Errorf("--ref requires git history enumeration")
	}

	config := enum.Config{
		Root:           target,
		IncludeHidden:  scanIncludeHidden,
		MaxFileSize:    scanMaxFileSize,
		FollowSymlinks: false,
		Extract:        scanExtract,
		Ref:            scanRef,
	}

	if scanGit || scanRef != "" {
		return enum.NewGitEnumerator(config), nil
	}
	if scanNoGit {
		return enum.NewFilesystemEnumerator(config), nil
	}

	// Neither flag given: auto-detect. A .git directory means history is
	// available; scan it alongside the working tree so untracked files are
	// still covered. First enumerator wins provenance for shared blobs.
	if info, err := os.Stat(filepath.Join(target, ".git")); err == nil && info.IsDir() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Detected git repository, scanning git history and working tree")
		return enum.NewCombinedEnumerator(
			enum.NewGitEnumerator(config),
			enum.NewFilesystemEnumerator(config),
		), nil
	}

	return enum.NewFilesystemEnumerator(config), nil
}

func outputMatches(cmd *cobra.Command, matches []*types.Match) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(matches)
}

func outputFindings(cmd *cobra.Command, findings []*types.Finding) error {
	switch scanOutputFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(findings)
	case "human":
		if len(findings) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nNo findings.\n")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nFindings:\n")
		for i, f := range findings {
			form := ""
			if f.Truncated {
				form = " (truncated form)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s: %s%s\n", i+1, f.GrammarID, f.Value, form)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}
}

// outputSARIF outputs matches in SARIF 2.1.0 format
func outputSARIF(cmd *cobra.Command, s store.Store, grammars []*types.Grammar, matches []*types.Match) error {
	// Create SARIF report
	report := sarif.NewReport()

	// Add all grammars
	for _, g := range grammars {
		report.AddGrammar(g)
	}

	// Cache provenance by blob ID to avoid repeated queries
	provenanceCache := make(map[types.BlobID]string)

	// Get provenance for each match and add results
	for _, match := range matches {
		// Check cache first
		filePath, ok := provenanceCache[match.BlobID]
		if !ok {
			// Query provenance
			prov, err := s.GetProvenance(match.BlobID)
			if err != nil {
				// If no provenance found, use blob ID as fallback
				filePath = match.BlobID.Hex()
			} else {
				filePath = prov.Path()
			}
			provenanceCache[match.BlobID] = filePath
		}

		report.AddResult(match, filePath)
	}

	// Serialize to JSON
	jsonBytes, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}

	// Write to stdout
	_, err = cmd.OutOrStdout().Write(jsonBytes)
	if err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}

	return nil
}
