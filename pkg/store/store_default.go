//go:build !wasm

package store

import "fmt"

// New creates a store for native builds: MemoryStore for ":memory:" paths,
// SQLite for file paths. The SQLite driver is pure Go, so no CGO split.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	if cfg.Path == ":memory:" {
		return NewMemory(), nil
	}

	return NewSQLite(cfg.Path)
}
