//go:build !wasm

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MemoryPath(t *testing.T) {
	s, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	_, ok := s.(*MemoryStore)
	assert.True(t, ok, ":memory: should select the in-memory backend")
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New(Config{Path: ""})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestNew_FilePath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(Config{Path: dbPath})
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	_, ok := s.(*SQLiteStore)
	assert.True(t, ok, "a file path should select the sqlite backend")
}
