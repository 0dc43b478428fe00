//go:build !wasm

package store

import (
	"database/sql"
	"fmt"

	"github.com/chainmask/chainmask/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite (modernc.org/sqlite, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
// Use ":memory:" for an in-memory database (useful for testing).
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := configure(db); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func configure(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	return nil
}

// AddBlob stores a blob record.
func (s *SQLiteStore) AddBlob(id types.BlobID, size int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO blobs (id, size) VALUES (?, ?)", id, size)
	if err != nil {
		return fmt.Errorf("inserting blob: %w", err)
	}
	return nil
}

// AddGrammar stores the grammar a scan ran with, so reports built from the
// database can name and describe grammars without assuming the builtin pack.
func (s *SQLiteStore) AddGrammar(g *types.Grammar) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO grammars (id, name, family, truncated, pattern, structural_id, priority, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.ID,
		g.Name,
		string(g.Family),
		boolToInt(g.Truncated),
		g.Pattern,
		g.StructuralID,
		g.Priority,
		g.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting grammar: %w", err)
	}
	return nil
}

// AddMatch stores a match record.
func (s *SQLiteStore) AddMatch(m *types.Match) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO matches
		(blob_id, grammar_id, structural_id, finding_id, family, truncated, value,
		 offset_start, offset_end, start_line, start_column, end_line, end_column,
		 snippet_before, snippet_matching, snippet_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.BlobID,
		m.GrammarID,
		m.StructuralID,
		m.FindingID,
		string(m.Family),
		boolToInt(m.Truncated),
		m.Value,
		m.Location.Offset.Start,
		m.Location.Offset.End,
		m.Location.Source.Start.Line,
		m.Location.Source.Start.Column,
		m.Location.Source.End.Line,
		m.Location.Source.End.Column,
		m.Snippet.Before,
		m.Snippet.Matching,
		m.Snippet.After,
	)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}

	return nil
}

// AddFinding stores a finding (deduplicated by content finding ID).
func (s *SQLiteStore) AddFinding(f *types.Finding) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO findings (id, grammar_id, family, truncated, value)
		VALUES (?, ?, ?, ?, ?)
	`,
		f.ID,
		f.GrammarID,
		string(f.Family),
		boolToInt(f.Truncated),
		f.Value,
	)
	if err != nil {
		return fmt.Errorf("inserting finding: %w", err)
	}

	return nil
}

// AddProvenance associates provenance with a blob.
func (s *SQLiteStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	row, err := provenanceToRow(prov)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO provenance (blob_id, type, path, repo_path, commit_hash, member_path, url, title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		blobID,
		row.kind,
		row.path,
		row.repoPath,
		row.commitHash,
		row.memberPath,
		row.url,
		row.title,
	)
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}

	return nil
}

const matchColumns = `blob_id, grammar_id, structural_id, finding_id, family, truncated, value,
	offset_start, offset_end, start_line, start_column, end_line, end_column,
	snippet_before, snippet_matching, snippet_after`

// GetMatches retrieves matches for a blob in ascending offset order.
func (s *SQLiteStore) GetMatches(blobID types.BlobID) ([]*types.Match, error) {
	rows, err := s.db.Query(`
		SELECT `+matchColumns+`
		FROM matches
		WHERE blob_id = ?
		ORDER BY offset_start, offset_end
	`, blobID)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	return scanMatchRows(rows)
}

// GetAllMatches retrieves all matches (for JSON export).
func (s *SQLiteStore) GetAllMatches() ([]*types.Match, error) {
	rows, err := s.db.Query(`
		SELECT ` + matchColumns + `
		FROM matches
		ORDER BY blob_id, offset_start, offset_end
	`)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	return scanMatchRows(rows)
}

func scanMatchRows(rows *sql.Rows) ([]*types.Match, error) {
	var matches []*types.Match
	for rows.Next() {
		var m types.Match
		var family string
		var truncated int

		err := rows.Scan(
			&m.BlobID,
			&m.GrammarID,
			&m.StructuralID,
			&m.FindingID,
			&family,
			&truncated,
			&m.Value,
			&m.Location.Offset.Start,
			&m.Location.Offset.End,
			&m.Location.Source.Start.Line,
			&m.Location.Source.Start.Column,
			&m.Location.Source.End.Line,
			&m.Location.Source.End.Column,
			&m.Snippet.Before,
			&m.Snippet.Matching,
			&m.Snippet.After,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}

		m.Family = types.Family(family)
		m.Truncated = truncated != 0
		m.Index = m.Location.Offset.Start

		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}

	return matches, nil
}

// GetFindings retrieves all findings (for reporting).
func (s *SQLiteStore) GetFindings() ([]*types.Finding, error) {
	rows, err := s.db.Query(`
		SELECT id, grammar_id, family, truncated, value
		FROM findings
		ORDER BY grammar_id, value
	`)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	var findings []*types.Finding
	for rows.Next() {
		var f types.Finding
		var family string
		var truncated int

		if err := rows.Scan(&f.ID, &f.GrammarID, &family, &truncated, &f.Value); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}

		f.Family = types.Family(family)
		f.Truncated = truncated != 0

		findings = append(findings, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating findings: %w", err)
	}

	return findings, nil
}

// GetGrammars retrieves the grammars stored alongside scan results.
func (s *SQLiteStore) GetGrammars() ([]*types.Grammar, error) {
	rows, err := s.db.Query(`
		SELECT id, name, family, truncated, pattern, structural_id, priority, description
		FROM grammars
		ORDER BY priority, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying grammars: %w", err)
	}
	defer rows.Close()

	var grammars []*types.Grammar
	for rows.Next() {
		var g types.Grammar
		var family string
		var truncated int

		err := rows.Scan(&g.ID, &g.Name, &family, &truncated, &g.Pattern, &g.StructuralID, &g.Priority, &g.Description)
		if err != nil {
			return nil, fmt.Errorf("scanning grammar: %w", err)
		}

		g.Family = types.Family(family)
		g.Truncated = truncated != 0

		grammars = append(grammars, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating grammars: %w", err)
	}

	return grammars, nil
}

// FindingExists checks if a finding with this content finding ID exists.
func (s *SQLiteStore) FindingExists(id string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM findings WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking finding existence: %w", err)
	}
	return count > 0, nil
}

// BlobExists checks if a blob has already been scanned.
func (s *SQLiteStore) BlobExists(id types.BlobID) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM blobs WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking blob existence: %w", err)
	}
	return count > 0, nil
}

// GetProvenance retrieves the first provenance record for a blob.
func (s *SQLiteStore) GetProvenance(blobID types.BlobID) (types.Provenance, error) {
	var row provRow
	err := s.db.QueryRow(`
		SELECT type, path, repo_path, commit_hash, member_path, url, title
		FROM provenance
		WHERE blob_id = ?
		ORDER BY id
		LIMIT 1
	`, blobID).Scan(&row.kind, &row.path, &row.repoPath, &row.commitHash, &row.memberPath, &row.url, &row.title)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no provenance found for blob %s", blobID.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}

	return rowToProvenance(row)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// provRow is the flattened provenance column set. Unused columns per kind
// hold '' so the table's UNIQUE constraint deduplicates.
type provRow struct {
	kind       string
	path       string
	repoPath   string
	commitHash string
	memberPath string
	url        string
	title      string
}

func provenanceToRow(prov types.Provenance) (provRow, error) {
	switch p := prov.(type) {
	case types.FileProvenance:
		return provRow{kind: p.Kind(), path: p.FilePath}, nil
	case types.GitProvenance:
		row := provRow{kind: p.Kind(), path: p.BlobPath, repoPath: p.RepoPath}
		if p.Commit != nil {
			row.commitHash = p.Commit.CommitID
		}
		return row, nil
	case types.ArchiveProvenance:
		return provRow{kind: p.Kind(), path: p.ArchivePath, memberPath: p.MemberPath}, nil
	case types.PageProvenance:
		return provRow{kind: p.Kind(), url: p.URL, title: p.Title}, nil
	default:
		return provRow{}, fmt.Errorf("unknown provenance type: %T", prov)
	}
}

func rowToProvenance(row provRow) (types.Provenance, error) {
	switch row.kind {
	case "file":
		return types.FileProvenance{FilePath: row.path}, nil
	case "git":
		g := types.GitProvenance{RepoPath: row.repoPath, BlobPath: row.path}
		if row.commitHash != "" {
			g.Commit = &types.CommitMetadata{CommitID: row.commitHash}
		}
		return g, nil
	case "archive":
		return types.ArchiveProvenance{ArchivePath: row.path, MemberPath: row.memberPath}, nil
	case "page":
		return types.PageProvenance{URL: row.url, Title: row.title}, nil
	default:
		return nil, fmt.Errorf("unknown provenance kind: %q", row.kind)
	}
}
