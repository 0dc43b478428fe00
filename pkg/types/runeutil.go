package types

// PositionTracker converts ascending rune offsets into 1-based line and
// column positions with a single forward pass over content. Each Advance
// resumes where the previous one stopped, so resolving every match position
// in a blob costs one traversal regardless of match count.
type PositionTracker struct {
	content []rune
	pos     int
	line    int
	column  int
}

// NewPositionTracker returns a tracker positioned at the start of content.
func NewPositionTracker(content []rune) *PositionTracker {
	return &PositionTracker{content: content, line: 1, column: 1}
}

// Advance moves the tracker forward to offset and returns the line and
// column there. Offsets must not decrease across calls; offsets past the
// end of content clamp to the final position.
func (t *PositionTracker) Advance(offset int) (line, column int) {
	for t.pos < offset && t.pos < len(t.content) {
		if t.content[t.pos] == '\n' {
			t.line++
			t.column = 1
		} else {
			t.column++
		}
		t.pos++
	}
	return t.line, t.column
}

// ComputeLineColumn computes line and column numbers from a character offset
// in content. Lines and columns are 1-indexed; columns count characters, so
// multi-byte text positions the same way UIs do.
func ComputeLineColumn(content []rune, offset int) (line, column int) {
	return NewPositionTracker(content).Advance(offset)
}
