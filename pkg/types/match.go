package types

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Match is a single detection result.
//
// Index and Location.Offset count characters (runes), not bytes, so they can
// be used to splice the original text even when it contains multi-byte
// characters. Value is the exact matched substring; a MatchList (matches
// sorted by Index, pairwise non-overlapping) therefore reconstructs its
// source regions exactly.
type Match struct {
	Index        int64    `json:"index"`               // rune offset of first character
	Value        string   `json:"value"`               // exact matched substring
	Family       Family   `json:"family"`              // identifier family
	Truncated    bool     `json:"truncated,omitempty"` // elided display form (0x123…abc)
	GrammarID    string   `json:"grammar_id"`          // e.g., "btc.segwit"
	GrammarName  string   `json:"grammar_name,omitempty"`
	BlobID       BlobID   `json:"blob_id"`
	StructuralID string   `json:"structural_id,omitempty"` // SHA-1(grammar_structural_id + '\0' + blob_id + '\0' + start + '\0' + end)
	FindingID    string   `json:"finding_id,omitempty"`    // SHA-1(grammar_structural_id + '\0' + value) — content-based dedup ID
	Location     Location `json:"location"`
	Snippet      Snippet  `json:"snippet"`
}

// ComputeStructuralID computes the location-based unique ID.
// Format: SHA-1(grammar_structural_id + '\0' + blob_id + '\0' + start + '\0' + end)
func (m *Match) ComputeStructuralID(grammarStructuralID string) string {
	h := sha1.New()

	h.Write([]byte(grammarStructuralID))
	h.Write([]byte{0}) // null byte separator

	h.Write(m.BlobID[:])
	h.Write([]byte{0})

	startStr := fmt.Sprintf("%d", m.Location.Offset.Start)
	h.Write([]byte(startStr))
	h.Write([]byte{0})

	endStr := fmt.Sprintf("%d", m.Location.Offset.End)
	h.Write([]byte(endStr))

	return hex.EncodeToString(h.Sum(nil))
}

// End returns the rune offset one past the last character of the match.
func (m *Match) End() int64 {
	return m.Index + int64(len([]rune(m.Value)))
}
