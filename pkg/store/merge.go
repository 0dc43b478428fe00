//go:build !wasm

package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the database files to merge from.
	SourcePaths []string
	// DestPath is the destination database file.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	BlobsMerged      int
	GrammarsMerged   int
	MatchesMerged    int
	FindingsMerged   int
	ProvenanceMerged int
	SourcesProcessed int
}

// Merge combines multiple result databases into one.
// Deduplication is handled via INSERT OR IGNORE on primary keys and the
// structural-ID uniqueness of matches.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	// Open/create destination database
	destDB, err := sql.Open("sqlite", cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer destDB.Close()

	// Initialize schema on destination
	if err := CreateSchema(destDB); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	stats := &MergeStats{}

	// Process each source database
	for _, sourcePath := range cfg.SourcePaths {
		sourceStats, err := mergeFrom(destDB, sourcePath)
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.BlobsMerged += sourceStats.BlobsMerged
		stats.GrammarsMerged += sourceStats.GrammarsMerged
		stats.MatchesMerged += sourceStats.MatchesMerged
		stats.FindingsMerged += sourceStats.FindingsMerged
		stats.ProvenanceMerged += sourceStats.ProvenanceMerged
		stats.SourcesProcessed++
	}

	return stats, nil
}

// mergeFrom copies data from a source database to the destination.
func mergeFrom(destDB *sql.DB, sourcePath string) (*MergeStats, error) {
	// Open source database
	sourceDB, err := sql.Open("sqlite", sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	defer sourceDB.Close()

	// Refuse to merge from an incompatible schema
	if err := verifySchemaVersion(sourceDB); err != nil {
		return nil, err
	}

	stats := &MergeStats{}

	// Start transaction for efficiency
	tx, err := destDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Blobs first: matches and provenance reference them
	blobCount, err := mergeBlobs(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging blobs: %w", err)
	}
	stats.BlobsMerged = blobCount

	grammarCount, err := mergeGrammars(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging grammars: %w", err)
	}
	stats.GrammarsMerged = grammarCount

	matchCount, err := mergeMatches(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging matches: %w", err)
	}
	stats.MatchesMerged = matchCount

	findingCount, err := mergeFindings(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging findings: %w", err)
	}
	stats.FindingsMerged = findingCount

	provCount, err := mergeProvenance(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging provenance: %w", err)
	}
	stats.ProvenanceMerged = provCount

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return stats, nil
}

func mergeBlobs(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query("SELECT id, size FROM blobs")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO blobs (id, size) VALUES (?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var id string
		var size int64
		if err := rows.Scan(&id, &size); err != nil {
			return count, err
		}
		result, err := stmt.Exec(id, size)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}

func mergeGrammars(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query(`
		SELECT id, name, family, truncated, pattern, structural_id, priority, description
		FROM grammars
	`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO grammars
		(id, name, family, truncated, pattern, structural_id, priority, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var id, name, family, pattern, structuralID, description string
		var truncated, priority int
		if err := rows.Scan(&id, &name, &family, &truncated, &pattern, &structuralID, &priority, &description); err != nil {
			return count, err
		}
		result, err := stmt.Exec(id, name, family, truncated, pattern, structuralID, priority, description)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}

func mergeMatches(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query(`
		SELECT ` + matchColumns + `
		FROM matches
	`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO matches
		(blob_id, grammar_id, structural_id, finding_id, family, truncated, value,
		 offset_start, offset_end, start_line, start_column, end_line, end_column,
		 snippet_before, snippet_matching, snippet_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var blobID, grammarID, structuralID, findingID, family, value string
		var truncated int
		var offsetStart, offsetEnd int64
		var startLine, startColumn, endLine, endColumn int
		var snippetBefore, snippetMatching, snippetAfter []byte

		if err := rows.Scan(&blobID, &grammarID, &structuralID, &findingID, &family, &truncated, &value,
			&offsetStart, &offsetEnd, &startLine, &startColumn, &endLine, &endColumn,
			&snippetBefore, &snippetMatching, &snippetAfter); err != nil {
			return count, err
		}
		result, err := stmt.Exec(blobID, grammarID, structuralID, findingID, family, truncated, value,
			offsetStart, offsetEnd, startLine, startColumn, endLine, endColumn,
			snippetBefore, snippetMatching, snippetAfter)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}

func mergeFindings(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query("SELECT id, grammar_id, family, truncated, value FROM findings")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO findings (id, grammar_id, family, truncated, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var id, grammarID, family, value string
		var truncated int
		if err := rows.Scan(&id, &grammarID, &family, &truncated, &value); err != nil {
			return count, err
		}
		result, err := stmt.Exec(id, grammarID, family, truncated, value)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}

func mergeProvenance(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query("SELECT blob_id, type, path, repo_path, commit_hash, member_path, url, title FROM provenance")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO provenance (blob_id, type, path, repo_path, commit_hash, member_path, url, title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var blobID, provType, path, repoPath, commitHash, memberPath, url, title string
		if err := rows.Scan(&blobID, &provType, &path, &repoPath, &commitHash, &memberPath, &url, &title); err != nil {
			return count, err
		}
		result, err := stmt.Exec(blobID, provType, path, repoPath, commitHash, memberPath, url, title)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}
