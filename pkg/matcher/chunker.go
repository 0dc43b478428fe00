package matcher

// ChunkConfig configures content chunking behavior
type ChunkConfig struct {
	MaxChunkSize int // Maximum size of a chunk in runes (default: 4M)
	OverlapLines int // Number of lines to overlap between chunks (default: 10)
}

// DefaultChunkConfig returns production defaults
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize: 4 * 1024 * 1024,
		OverlapLines: 10,
	}
}

// Chunk is a window of scan content with position info
type Chunk struct {
	Content     []rune // view into the original content, never a copy
	StartOffset int    // rune offset in the original content where this chunk starts
	EndOffset   int    // rune offset where this chunk ends
	Index       int    // chunk number (0-indexed)
}

// ChunkContent splits content at line boundaries with overlap.
// If content fits in MaxChunkSize, returns a single chunk. Otherwise chunks
// grow whole lines until the limit, and consecutive chunks re-cover the last
// OverlapLines lines so a match near a boundary appears in at least one
// chunk in full. Identifiers never span lines, so line-boundary splitting
// cannot cut one in half; a single line longer than MaxChunkSize becomes one
// oversized chunk.
func ChunkContent(content []rune, config ChunkConfig) []Chunk {
	if len(content) <= config.MaxChunkSize {
		return []Chunk{{
			Content:     content,
			StartOffset: 0,
			EndOffset:   len(content),
			Index:       0,
		}}
	}

	// Offsets where each line starts; lines keep their trailing newline.
	lineStarts := []int{0}
	for i, r := range content {
		if r == '\n' && i+1 < len(content) {
			lineStarts = append(lineStarts, i+1)
		}
	}
	lineEnd := func(line int) int {
		if line+1 < len(lineStarts) {
			return lineStarts[line+1]
		}
		return len(content)
	}

	var chunks []Chunk
	startLine := 0
	for startLine < len(lineStarts) {
		chunkStart := lineStarts[startLine]

		// Always take at least one line, then extend while the next fits.
		endLine := startLine
		for endLine+1 < len(lineStarts) && lineEnd(endLine+1)-chunkStart <= config.MaxChunkSize {
			endLine++
		}
		chunkEnd := lineEnd(endLine)

		chunks = append(chunks, Chunk{
			Content:     content[chunkStart:chunkEnd],
			StartOffset: chunkStart,
			EndOffset:   chunkEnd,
			Index:       len(chunks),
		})

		if chunkEnd >= len(content) {
			break
		}

		// Next chunk starts OverlapLines before the first uncovered line.
		next := endLine + 1 - config.OverlapLines
		if next <= startLine {
			next = startLine + 1 // guarantee progress
		}
		startLine = next
	}

	return chunks
}
