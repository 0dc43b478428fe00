package matcher

// ExtractContext extracts N lines before and after a match from rune content.
// Returns before, after byte slices that are independent copies (not views
// into the scan buffer), so storing them will not pin large content in memory.
// Handles content boundaries gracefully (returns empty at start/end).
// Context starts immediately before the start offset and ends immediately
// after the end offset; the matched region itself is not duplicated.
func ExtractContext(content []rune, start, end int, lines int) (before, after []byte) {
	if lines <= 0 {
		return nil, nil
	}
	if start < 0 || start > len(content) {
		return nil, nil
	}
	if end < 0 || end > len(content) {
		return nil, nil
	}
	if start > end {
		return nil, nil
	}

	if b := extractBefore(content, start, lines); len(b) > 0 {
		before = []byte(string(b))
	}
	if a := extractAfter(content, end, lines); len(a) > 0 {
		after = []byte(string(a))
	}

	return before, after
}

// extractBefore finds N lines before the start offset.
// Walks backward from start, counting newlines.
func extractBefore(content []rune, start, lines int) []rune {
	if start == 0 {
		return nil
	}

	// Start at position before the match
	pos := start - 1
	linesFound := 0

	// Walk backward counting newlines; N newlines delimit N lines
	for pos >= 0 {
		if content[pos] == '\n' {
			linesFound++
			if linesFound == lines {
				// Found N newlines, continue backward to the start of the
				// Nth line
				for pos > 0 {
					pos--
					if content[pos] == '\n' {
						return content[pos+1 : start]
					}
				}
				// Reached start of content - Nth line starts at position 0
				return content[0:start]
			}
		}
		pos--
	}

	// Reached start of content before finding N lines
	return content[0:start]
}

// extractAfter finds N lines after the end offset.
// Walks forward from end, counting newlines.
func extractAfter(content []rune, end, lines int) []rune {
	if end >= len(content) {
		return nil
	}

	// If end points to a newline, skip it (it's part of the match line)
	start := end
	if content[end] == '\n' {
		start = end + 1
		if start >= len(content) {
			return nil
		}
	}

	// Walk forward counting newlines to find N complete lines
	pos := start
	linesFound := 0

	for pos < len(content) {
		if content[pos] == '\n' {
			linesFound++
			if linesFound == lines {
				// Found N lines, include up to and including this newline
				return content[start : pos+1]
			}
		}
		pos++
	}

	// Reached end of content before finding N lines
	return content[start:]
}
