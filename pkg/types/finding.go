package types

import (
	"crypto/sha1"
	"encoding/hex"
)

// Finding groups matches of the same identifier value for deduplication:
// one wallet address pasted in ten files is one finding with ten matches.
type Finding struct {
	ID        string   `json:"id"` // SHA-1(grammar_structural_id + '\0' + value)
	GrammarID string   `json:"grammar_id"`
	Family    Family   `json:"family"`
	Truncated bool     `json:"truncated,omitempty"`
	Value     string   `json:"value"`
	Matches   []*Match `json:"matches,omitempty"` // matches belonging to this finding
}

// ComputeFindingID computes the content-based finding ID.
// Format: SHA-1(grammar_structural_id + '\0' + value)
func ComputeFindingID(grammarStructuralID, value string) string {
	h := sha1.New()

	h.Write([]byte(grammarStructuralID))
	h.Write([]byte{0}) // null byte separator

	h.Write([]byte(value))

	return hex.EncodeToString(h.Sum(nil))
}
