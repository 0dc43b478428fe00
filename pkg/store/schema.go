//go:build !wasm

package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the database schema if it doesn't exist and verifies
// an existing database carries the expected version.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	if err := verifySchemaVersion(db); err != nil {
		return err
	}

	if err := createBlobsTable(db); err != nil {
		return fmt.Errorf("creating blobs table: %w", err)
	}

	if err := createGrammarsTable(db); err != nil {
		return fmt.Errorf("creating grammars table: %w", err)
	}

	if err := createMatchesTable(db); err != nil {
		return fmt.Errorf("creating matches table: %w", err)
	}

	if err := createFindingsTable(db); err != nil {
		return fmt.Errorf("creating findings table: %w", err)
	}

	if err := createProvenanceTable(db); err != nil {
		return fmt.Errorf("creating provenance table: %w", err)
	}

	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Insert version if table is empty
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	return nil
}

// verifySchemaVersion refuses to operate on databases written by an
// incompatible schema, rather than failing later with confusing SQL errors.
func verifySchemaVersion(db *sql.DB) error {
	var version int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", version, SchemaVersion)
	}
	return nil
}

func createBlobsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			id TEXT PRIMARY KEY NOT NULL,
			size INTEGER NOT NULL
		)
	`)
	return err
}

func createGrammarsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS grammars (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			family TEXT NOT NULL,
			truncated INTEGER NOT NULL DEFAULT 0,
			pattern TEXT NOT NULL,
			structural_id TEXT NOT NULL,
			priority INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

func createMatchesTable(db *sql.DB) error {
	// offset_start/offset_end count runes, not bytes
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			blob_id TEXT NOT NULL REFERENCES blobs(id),
			grammar_id TEXT NOT NULL,
			structural_id TEXT NOT NULL UNIQUE,
			finding_id TEXT NOT NULL,
			family TEXT NOT NULL,
			truncated INTEGER NOT NULL DEFAULT 0,
			value TEXT NOT NULL,
			offset_start INTEGER NOT NULL,
			offset_end INTEGER NOT NULL,
			start_line INTEGER NOT NULL DEFAULT 0,
			start_column INTEGER NOT NULL DEFAULT 0,
			end_line INTEGER NOT NULL DEFAULT 0,
			end_column INTEGER NOT NULL DEFAULT 0,
			snippet_before BLOB,
			snippet_matching BLOB,
			snippet_after BLOB
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_matches_blob_id ON matches(blob_id)
	`)
	return err
}

func createFindingsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS findings (
			id TEXT PRIMARY KEY NOT NULL,
			grammar_id TEXT NOT NULL,
			family TEXT NOT NULL,
			truncated INTEGER NOT NULL DEFAULT 0,
			value TEXT NOT NULL
		)
	`)
	return err
}

func createProvenanceTable(db *sql.DB) error {
	// Unused columns per kind hold '' rather than NULL so the UNIQUE
	// constraint actually deduplicates repeated inserts.
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS provenance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			blob_id TEXT NOT NULL REFERENCES blobs(id),
			type TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '',
			repo_path TEXT NOT NULL DEFAULT '',
			commit_hash TEXT NOT NULL DEFAULT '',
			member_path TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			UNIQUE(blob_id, type, path, repo_path, commit_hash, member_path, url)
		)
	`)
	if err != nil {
		return err
	}

	// Create index for efficient provenance lookup by blob_id
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_provenance_blob_id ON provenance(blob_id)
	`)
	return err
}
