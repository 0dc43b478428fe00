package types

import (
	"crypto/sha1"
	"encoding/hex"
)

// Grammar describes one identifier format: the pattern that recognizes it
// plus the metadata the matcher needs to rank and gate candidates.
type Grammar struct {
	ID               string   `json:"id"`                // e.g., "btc.segwit"
	Name             string   `json:"name"`              // human-readable name
	Family           Family   `json:"family"`            // family produced matches are tagged with
	Truncated        bool     `json:"truncated"`         // recognizes elided display forms (0x123…abc)
	Pattern          string   `json:"pattern"`           // regex pattern
	StructuralID     string   `json:"structural_id"`     // SHA-1 of pattern (computed)
	Priority         int      `json:"priority"`          // tie-break rank for identical spans; lower wins
	Anchors          []string `json:"anchors,omitempty"` // literal substrings for prefiltering; empty = always run
	Check            string   `json:"check,omitempty"`   // named structural check applied to candidates
	Description      string   `json:"description,omitempty"`
	Examples         []string `json:"examples,omitempty"`          // positive test cases
	NegativeExamples []string `json:"negative_examples,omitempty"` // negative test cases
	References       []string `json:"references,omitempty"`        // documentation URLs
}

// ComputeStructuralID computes SHA-1 of the pattern. Two grammars with the
// same pattern share a structural ID regardless of metadata.
func (g *Grammar) ComputeStructuralID() string {
	h := sha1.New()
	h.Write([]byte(g.Pattern))
	return hex.EncodeToString(h.Sum(nil))
}
