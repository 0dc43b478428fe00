package types

// Snippet contains context around a match.
type Snippet struct {
	Before   []byte `json:"before,omitempty"`   // text before the match
	Matching []byte `json:"matching,omitempty"` // the matched content
	After    []byte `json:"after,omitempty"`    // text after the match
}
