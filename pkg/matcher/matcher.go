// Package matcher turns grammar packs into scan engines. An engine collects
// regex candidates for every grammar, applies structural checks, and resolves
// overlaps so each scan returns an ordered, pairwise non-overlapping match
// list with rune-accurate offsets.
package matcher

import "github.com/chainmask/chainmask/pkg/types"

// Matcher scans content for identifier matches.
type Matcher interface {
	// Match scans content against all loaded grammars.
	// Matches come back ordered by index and pairwise non-overlapping.
	Match(content []byte) ([]*types.Match, error)

	// MatchWithBlobID scans content with a known BlobID.
	MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error)

	// Close releases resources (e.g., Hyperscan scratch space).
	Close() error
}

// Config for matcher initialization.
type Config struct {
	// Grammars to compile and load into the matcher
	Grammars []*types.Grammar

	// ContextLines is the number of lines captured before and after each
	// match for its snippet (0 = no context)
	ContextLines int
}
