package matcher

import "sort"

// resolveOverlaps reduces candidates to the final non-overlapping match set.
//
// Candidates are ordered by start offset; at the same start the longer span
// wins, so a 64-hex transaction hash is never split by a shorter grammar that
// also matches its prefix. Identical spans fall back to grammar priority
// (lower value wins), then grammar ID for determinism. A greedy sweep then
// accepts each candidate that begins at or after the end of the last
// accepted one, which keeps directly adjacent matches and drops everything
// the winner covers.
func resolveOverlaps(cands []candidate) []candidate {
	if len(cands) <= 1 {
		return cands
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		if cands[i].end != cands[j].end {
			return cands[i].end > cands[j].end
		}
		if cands[i].grammar.Priority != cands[j].grammar.Priority {
			return cands[i].grammar.Priority < cands[j].grammar.Priority
		}
		return cands[i].grammar.ID < cands[j].grammar.ID
	})

	winners := make([]candidate, 0, len(cands))
	lastEnd := 0
	for _, c := range cands {
		if c.start >= lastEnd {
			winners = append(winners, c)
			lastEnd = c.end
		}
	}

	return winners
}
