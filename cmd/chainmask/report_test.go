package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/chainmask/chainmask/pkg/store"
	"github.com/chainmask/chainmask/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newReportCmd creates a fresh report command for testing
func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report from scan results",
		RunE:  runReport,
	}
	cmd.Flags().StringVar(&reportDatastore, "datastore", "chainmask.db", "Path to results database")
	cmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, sarif")
	cmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	return cmd
}

func TestReportCommand_HumanFormat(t *testing.T) {
	// Setup: Create test database with findings
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)

	// Add test findings
	finding1 := &types.Finding{
		ID:        "finding1",
		GrammarID: "evm.address",
		Family:    types.FamilyEvmAddress,
		Value:     "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
	}
	finding2 := &types.Finding{
		ID:        "finding2",
		GrammarID: "btc.segwit",
		Family:    types.FamilyBtcSegwit,
		Value:     "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
	}
	finding3 := &types.Finding{
		ID:        "finding3",
		GrammarID: "ens.name",
		Family:    types.FamilyEnsName,
		Value:     "vitalik.eth",
	}

	require.NoError(t, s.AddFinding(finding1))
	require.NoError(t, s.AddFinding(finding2))
	require.NoError(t, s.AddFinding(finding3))
	require.NoError(t, s.Close())

	// Execute: Run report command
	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "human", "--color", "never"})

	err = cmd.Execute()
	require.NoError(t, err)

	// Verify: Check output contains summary
	output := stdout.String()
	assert.Contains(t, output, "=== Chainmask Report ===")
	assert.Contains(t, output, "Datastore: "+dbPath)
	assert.Contains(t, output, "Total findings: 3")
	assert.Contains(t, output, "evm.address")
	assert.Contains(t, output, "btc.segwit")
	assert.Contains(t, output, "ens.name")
	assert.Contains(t, output, "vitalik.eth")
	// Grammar names resolved from the builtin pack fallback
	assert.Contains(t, output, "Grammar:")
	assert.Contains(t, output, "Value:")
}

func TestReportCommand_TruncatedForm(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)

	require.NoError(t, s.AddFinding(&types.Finding{
		ID:        "finding1",
		GrammarID: "evm.truncated",
		Family:    types.FamilyEvmAddress,
		Truncated: true,
		Value:     "0x123...abc",
	}))
	require.NoError(t, s.Close())

	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "human", "--color", "never"})

	err = cmd.Execute()
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "0x123...abc (truncated form)")
}

func TestReportCommand_JSONFormat(t *testing.T) {
	// Setup: Create test database with findings
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)

	finding := &types.Finding{
		ID:        "finding1",
		GrammarID: "evm.address",
		Family:    types.FamilyEvmAddress,
		Value:     "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
	}
	require.NoError(t, s.AddFinding(finding))
	require.NoError(t, s.Close())

	// Execute: Run report command
	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "json"})

	err = cmd.Execute()
	require.NoError(t, err)

	// Verify: Check JSON output is valid
	output := stdout.String()
	assert.Contains(t, output, `"id"`)
	assert.Contains(t, output, `"grammar_id"`)
	assert.Contains(t, output, `"evm.address"`)
	assert.Contains(t, output, "finding1")
	assert.Contains(t, output, `"0x742d35Cc6634C0532925a3b844Bc454e4438f44e"`)
}

func TestReportCommand_JSONFormat_AttachesMatches(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)

	blobID := types.ComputeBlobID([]byte("test content"))
	require.NoError(t, s.AddBlob(blobID, 12))

	match := &types.Match{
		BlobID:       blobID,
		GrammarID:    "evm.address",
		StructuralID: "structural-1",
		FindingID:    "finding1",
		Family:       types.FamilyEvmAddress,
		Value:        "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		Location: types.Location{
			Offset: types.OffsetSpan{Start: 15, End: 57},
			Source: types.SourceSpan{
				Start: types.SourcePoint{Line: 1, Column: 16},
				End:   types.SourcePoint{Line: 1, Column: 57},
			},
		},
		Snippet: types.Snippet{Matching: []byte("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")},
	}
	require.NoError(t, s.AddMatch(match))

	require.NoError(t, s.AddFinding(&types.Finding{
		ID:        "finding1",
		GrammarID: "evm.address",
		Family:    types.FamilyEvmAddress,
		Value:     "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
	}))
	require.NoError(t, s.Close())

	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "json"})

	err = cmd.Execute()
	require.NoError(t, err)

	// The match rides along inside its finding
	output := stdout.String()
	assert.Contains(t, output, `"matches"`)
	assert.Contains(t, output, `"structural_id": "structural-1"`)
	assert.Contains(t, output, `"finding_id": "finding1"`)
}

func TestReportCommand_SARIFFormat(t *testing.T) {
	// Setup: Create test database with the full record chain
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)

	require.NoError(t, s.AddGrammar(&types.Grammar{
		ID:      "evm.address",
		Name:    "EVM Address",
		Family:  types.FamilyEvmAddress,
		Pattern: "0x[0-9a-fA-F]{40}",
	}))

	blobID := types.ComputeBlobID([]byte("wallet file"))
	require.NoError(t, s.AddBlob(blobID, 11))
	require.NoError(t, s.AddProvenance(blobID, types.FileProvenance{FilePath: "wallets.txt"}))

	require.NoError(t, s.AddMatch(&types.Match{
		BlobID:       blobID,
		GrammarID:    "evm.address",
		GrammarName:  "EVM Address",
		StructuralID: "structural-1",
		FindingID:    "finding1",
		Family:       types.FamilyEvmAddress,
		Value:        "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		Location: types.Location{
			Offset: types.OffsetSpan{Start: 15, End: 57},
			Source: types.SourceSpan{
				Start: types.SourcePoint{Line: 1, Column: 16},
				End:   types.SourcePoint{Line: 1, Column: 57},
			},
		},
		Snippet: types.Snippet{Matching: []byte("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")},
	}))
	require.NoError(t, s.Close())

	// Execute: Run report command with SARIF format
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "sarif"})

	err = cmd.Execute()
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, `"2.1.0"`)
	assert.Contains(t, output, `"evm.address"`)
	assert.Contains(t, output, "wallets.txt")
	assert.Contains(t, output, `"note"`)
	assert.Contains(t, output, `"startLine": 1`)
}

func TestReportCommand_EmptyDatastore(t *testing.T) {
	// Setup: Create empty database
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "empty.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Execute: Run report command
	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "human", "--color", "never"})

	err = cmd.Execute()
	require.NoError(t, err)

	// Verify: Should handle empty database gracefully
	output := stdout.String()
	assert.Contains(t, output, "Total findings: 0")
}

func TestReportCommand_DefaultDatastore(t *testing.T) {
	// Setup: Create database at default path
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(origDir)

	require.NoError(t, os.Chdir(tmpDir))

	s, err := store.New(store.Config{Path: "chainmask.db"})
	require.NoError(t, err)

	finding := &types.Finding{
		ID:        "finding1",
		GrammarID: "ens.name",
		Family:    types.FamilyEnsName,
		Value:     "vitalik.eth",
	}
	require.NoError(t, s.AddFinding(finding))
	require.NoError(t, s.Close())

	// Execute: Run report without --datastore flag (should use default)
	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--format", "human", "--color", "never"})

	err = cmd.Execute()
	require.NoError(t, err)

	// Verify: Should read from default chainmask.db
	output := stdout.String()
	assert.Contains(t, output, "Total findings: 1")
	assert.Contains(t, output, "ens.name")
}

func TestReportCommand_NonexistentDatastore(t *testing.T) {
	// Execute: Run report with nonexistent database
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--datastore", "/nonexistent/path.db"})

	err := cmd.Execute()

	// Verify: Should fail gracefully
	require.Error(t, err)
	assert.Contains(t, err.Error(), "datastore not found")
}

func TestReportCommand_ByGrammarSummary(t *testing.T) {
	// Setup: Create database with multiple findings from same grammar
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)

	// Four distinct identifiers matched by the same grammar
	for i := 0; i < 4; i++ {
		finding := &types.Finding{
			ID:        fmt.Sprintf("evm-finding-%d", i),
			GrammarID: "evm.address",
			Family:    types.FamilyEvmAddress,
			Value:     fmt.Sprintf("0x%040d", i),
		}
		require.NoError(t, s.AddFinding(finding))
	}

	// Two from a different grammar
	for i := 0; i < 2; i++ {
		finding := &types.Finding{
			ID:        fmt.Sprintf("btc-finding-%d", i),
			GrammarID: "btc.segwit",
			Family:    types.FamilyBtcSegwit,
			Value:     fmt.Sprintf("bc1qsegwitvalue%d", i),
		}
		require.NoError(t, s.AddFinding(finding))
	}
	require.NoError(t, s.Close())

	// Execute: Run report command
	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "human", "--color", "never"})

	err = cmd.Execute()
	require.NoError(t, err)

	// Verify: Check by-grammar summary
	output := stdout.String()
	assert.Contains(t, output, "By Grammar:")
	assert.Contains(t, output, "evm.address")
	assert.Contains(t, output, "4 findings")
	assert.Contains(t, output, "btc.segwit")
	assert.Contains(t, output, "2 findings")
}

func TestReportCommand_ShowsMatchDetail(t *testing.T) {
	// Setup: finding with two located matches and file provenance
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)

	blobID := types.ComputeBlobID([]byte("refund went to 0x742d35Cc6634C0532925a3b844Bc454e4438f44e please"))
	require.NoError(t, s.AddBlob(blobID, 64))
	require.NoError(t, s.AddProvenance(blobID, types.FileProvenance{FilePath: "exports/ledger.csv"}))

	value := "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	for i := 0; i < 2; i++ {
		require.NoError(t, s.AddMatch(&types.Match{
			BlobID:       blobID,
			GrammarID:    "evm.address",
			StructuralID: fmt.Sprintf("structural-%d", i),
			FindingID:    "finding1",
			Family:       types.FamilyEvmAddress,
			Value:        value,
			Location: types.Location{
				Offset: types.OffsetSpan{Start: int64(15 + i*100), End: int64(57 + i*100)},
				Source: types.SourceSpan{
					Start: types.SourcePoint{Line: 1 + i, Column: 16},
					End:   types.SourcePoint{Line: 1 + i, Column: 57},
				},
			},
			Snippet: types.Snippet{
				Before:   []byte("refund went to "),
				Matching: []byte(value),
				After:    []byte(" please"),
			},
		}))
	}

	require.NoError(t, s.AddFinding(&types.Finding{
		ID:        "finding1",
		GrammarID: "evm.address",
		Family:    types.FamilyEvmAddress,
		Value:     value,
	}))
	require.NoError(t, s.Close())

	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "human", "--color", "never"})

	err = cmd.Execute()
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "Finding 1/1")
	assert.Contains(t, output, "Match 1/2")
	assert.Contains(t, output, "Match 2/2")
	assert.Contains(t, output, "File: exports/ledger.csv")
	assert.Contains(t, output, "Blob: "+blobID.Hex())
	assert.Contains(t, output, "Lines: 1:16-1:57")
	assert.Contains(t, output, "refund went to "+value+" please")
}

func TestReportCommand_ColorAlways(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, s.AddFinding(&types.Finding{
		ID:        "finding1",
		GrammarID: "evm.address",
		Family:    types.FamilyEvmAddress,
		Value:     "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
	}))
	require.NoError(t, s.Close())

	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "human", "--color", "always"})

	err = cmd.Execute()
	require.NoError(t, err)

	// Escape sequences present even though output is not a TTY
	assert.Contains(t, stdout.String(), "\x1b[")
}

func TestFormatSnippetWithParts(t *testing.T) {
	t.Run("short snippet untouched", func(t *testing.T) {
		parts := formatSnippetWithParts([]byte("before "), []byte("MATCH"), []byte(" after"), 100)
		assert.Equal(t, "", parts.prefix)
		assert.Equal(t, "before ", parts.before)
		assert.Equal(t, "MATCH", parts.matching)
		assert.Equal(t, " after", parts.after)
		assert.Equal(t, "", parts.suffix)
	})

	t.Run("long context truncated around match", func(t *testing.T) {
		before := bytes.Repeat([]byte("a"), 300)
		after := bytes.Repeat([]byte("b"), 300)
		parts := formatSnippetWithParts(before, []byte("MATCH"), after, 100)

		assert.Equal(t, "...", parts.prefix)
		assert.Equal(t, "...", parts.suffix)
		assert.Equal(t, "MATCH", parts.matching)
		total := len(parts.before) + len(parts.matching) + len(parts.after)
		assert.LessOrEqual(t, total, 100)
		assert.NotEmpty(t, parts.before)
		assert.NotEmpty(t, parts.after)
	})

	t.Run("match longer than limit", func(t *testing.T) {
		match := bytes.Repeat([]byte("m"), 200)
		parts := formatSnippetWithParts([]byte("x"), match, []byte("y"), 100)

		assert.Equal(t, "...", parts.prefix)
		assert.Equal(t, "...", parts.suffix)
		assert.Len(t, parts.matching, 94)
		assert.Empty(t, parts.before)
		assert.Empty(t, parts.after)
	})

	t.Run("window shifts at start boundary", func(t *testing.T) {
		// Tiny before: all remaining budget goes to the after side
		after := bytes.Repeat([]byte("b"), 300)
		parts := formatSnippetWithParts([]byte("ab"), []byte("MATCH"), after, 100)

		assert.Equal(t, "", parts.prefix)
		assert.Equal(t, "ab", parts.before)
		assert.Equal(t, "MATCH", parts.matching)
		assert.Equal(t, "...", parts.suffix)
	})
}
