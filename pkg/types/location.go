package types

// OffsetSpan is a character (rune) range [Start, End) - half-open interval.
type OffsetSpan struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Len returns the number of characters in the span.
func (s OffsetSpan) Len() int64 {
	return s.End - s.Start
}

// Overlaps reports whether two half-open spans share any character.
func (s OffsetSpan) Overlaps(other OffsetSpan) bool {
	return s.Start < other.End && other.Start < s.End
}

// SourcePoint is line:column position (1-based, columns in characters).
type SourcePoint struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceSpan is start-end line:column range.
type SourceSpan struct {
	Start SourcePoint `json:"start"`
	End   SourcePoint `json:"end"`
}

// Location combines character offsets and source positions.
type Location struct {
	Offset OffsetSpan `json:"offset"`
	Source SourceSpan `json:"source"`
}
