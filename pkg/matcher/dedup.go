package matcher

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/chainmask/chainmask/pkg/types"
)

// DedupeMode controls how matches are deduplicated.
type DedupeMode int

const (
	// DedupeByLocation deduplicates by exact location (grammar + blob + offset).
	// The same identifier at different locations counts separately.
	DedupeByLocation DedupeMode = iota

	// DedupeByContent deduplicates by matched value (grammar + value).
	// The same identifier appearing many times counts as one finding.
	DedupeByContent
)

// Deduplicator removes duplicate matches based on configurable criteria.
type Deduplicator struct {
	seen map[string]bool
	mode DedupeMode
}

// NewDeduplicator creates a deduplicator with location-based deduplication.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]bool),
		mode: DedupeByLocation,
	}
}

// NewContentDeduplicator creates a deduplicator that deduplicates by value,
// the mode finding aggregation uses.
func NewContentDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]bool),
		mode: DedupeByContent,
	}
}

// SetMode changes the deduplication mode.
func (d *Deduplicator) SetMode(mode DedupeMode) {
	d.mode = mode
}

// IsDuplicate returns true if match was already seen.
func (d *Deduplicator) IsDuplicate(m *types.Match) bool {
	key := d.computeKey(m)
	return d.seen[key]
}

// Add marks a match as seen.
func (d *Deduplicator) Add(m *types.Match) {
	key := d.computeKey(m)
	d.seen[key] = true
}

// Reset clears the deduplicator for reuse.
func (d *Deduplicator) Reset() {
	clear(d.seen)
}

// computeKey generates the deduplication key based on mode.
func (d *Deduplicator) computeKey(m *types.Match) string {
	switch d.mode {
	case DedupeByContent:
		// Dedupe by grammar + matched value
		h := sha256.New()
		h.Write([]byte(m.GrammarID))
		h.Write([]byte{0})
		h.Write([]byte(m.Value))
		return hex.EncodeToString(h.Sum(nil))
	default:
		// Dedupe by structural ID (location-based)
		return m.StructuralID
	}
}
