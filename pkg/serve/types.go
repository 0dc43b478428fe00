package serve

import (
	"encoding/json"

	"github.com/chainmask/chainmask/pkg/scanner"
	"github.com/chainmask/chainmask/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "scan" | "scan_batch" | "mask" | "grammars" | "close"
	Payload json.RawMessage `json:"payload"`
}

// ScanPayload is the payload for "scan" requests
type ScanPayload struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// ScanBatchPayload is the payload for "scan_batch" requests
type ScanBatchPayload struct {
	Items []scanner.ContentItem `json:"items"`
}

// MaskPayload is the payload for "mask" requests. Zero-valued fields take the
// mask package defaults (partial style, head 6, tail 4).
type MaskPayload struct {
	Content     string   `json:"content"`
	Style       string   `json:"style,omitempty"`       // "partial" | "full" | "fixed"
	Head        int      `json:"head,omitempty"`        // partial: runes kept from the front
	Tail        int      `json:"tail,omitempty"`        // partial: runes kept from the end
	Placeholder string   `json:"placeholder,omitempty"` // full style replacement
	Families    []string `json:"families,omitempty"`    // restrict masking; empty = all
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "scan" | "scan_batch" | "mask" | "grammars" | "error"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
}

// MaskData is the data field for "mask" responses
type MaskData struct {
	Masked     string `json:"masked"`
	MatchCount int    `json:"match_count"`
}

// GrammarsData is the data field for "grammars" responses
type GrammarsData struct {
	Grammars []*types.Grammar `json:"grammars"`
}
