//go:build !wasm && cgo && hyperscan

package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/flier/gohs/hyperscan"

	"github.com/chainmask/chainmask/pkg/grammar"
	"github.com/chainmask/chainmask/pkg/types"
)

// HyperscanMatcher implements Matcher using Hyperscan.
// Two-stage pipeline:
//  1. Hyperscan finds pattern end offsets (fast, no start-of-match tracking)
//  2. Go regexp recovers exact boundaries for each hit
//
// Hyperscan reports byte offsets; candidates are translated to rune offsets
// before the overlap sweep so results agree with the portable engine.
//
// Thread safety: safe for concurrent use. Scans serialize on the shared
// scratch space.
type HyperscanMatcher struct {
	mu           sync.Mutex
	db           hyperscan.BlockDatabase
	scratch      *hyperscan.Scratch
	grammars     []*types.Grammar   // Grammar metadata indexed by pattern ID
	stage2       []*regexp.Regexp   // Boundary recovery, indexed by pattern ID
	checks       []grammar.CheckFunc
	contextLines int
}

// NewHyperscan creates a Hyperscan-based matcher.
func NewHyperscan(grammars []*types.Grammar, contextLines int) (*HyperscanMatcher, error) {
	if len(grammars) == 0 {
		return nil, fmt.Errorf("no grammars provided")
	}

	patterns := make([]*hyperscan.Pattern, len(grammars))
	stage2 := make([]*regexp.Regexp, len(grammars))
	checks := make([]grammar.CheckFunc, len(grammars))

	for i, g := range grammars {
		// Flags:
		// - DotAll: . matches newlines
		// - MultiLine: ^/$ match line boundaries
		// - Utf8Mode: truncation patterns contain a literal ellipsis rune
		// Note: SomLeftMost (start-of-match tracking) is disabled to avoid
		// memory issues with complex patterns. Stage 2 finds the actual
		// match boundaries.
		p := hyperscan.NewPattern(g.Pattern, hyperscan.DotAll|hyperscan.MultiLine|hyperscan.Utf8Mode)
		p.Id = i // Pattern ID = index into grammars array
		patterns[i] = p

		// Go regexp needs DotAll as an inline modifier
		re, err := regexp.Compile("(?s)" + g.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q for grammar %s: %w", g.Pattern, g.ID, err)
		}
		stage2[i] = re

		check, err := grammar.LookupCheck(g.Check)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", g.ID, err)
		}
		checks[i] = check
	}

	db, err := hyperscan.NewBlockDatabase(patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Hyperscan database: %w", err)
	}

	scratch, err := hyperscan.NewScratch(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to allocate Hyperscan scratch: %w", err)
	}

	return &HyperscanMatcher{
		db:           db,
		scratch:      scratch,
		grammars:     grammars,
		stage2:       stage2,
		checks:       checks,
		contextLines: contextLines,
	}, nil
}

// Match scans content against all loaded grammars.
func (m *HyperscanMatcher) Match(content []byte) ([]*types.Match, error) {
	blobID := types.ComputeBlobID(content)
	return m.MatchWithBlobID(content, blobID)
}

// rawMatch holds a Hyperscan hit in byte offsets before boundary recovery.
type rawMatch struct {
	grammarIdx int
	start      int
	end        int
}

// MatchWithBlobID scans content with a known BlobID.
func (m *HyperscanMatcher) MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error) {
	if len(content) == 0 {
		return nil, nil
	}

	// Collect raw matches from Hyperscan.
	// Without SomLeftMost, Hyperscan reports from=0 for every hit.
	// Key: "grammarIdx:end" -> smallest start offset seen (longest match)
	bestMatches := make(map[string]rawMatch)

	onMatch := func(id uint, from, to uint64, flags uint, context interface{}) error {
		if int(id) >= len(m.grammars) {
			return fmt.Errorf("invalid pattern ID from Hyperscan: %d", id)
		}

		start := int(from)
		end := int(to)

		key := fmt.Sprintf("%d:%d", id, end)
		if existing, ok := bestMatches[key]; !ok || start < existing.start {
			bestMatches[key] = rawMatch{grammarIdx: int(id), start: start, end: end}
		}

		return nil
	}

	m.mu.Lock()
	err := m.db.Scan(content, m.scratch, onMatch, nil)
	m.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("Hyperscan scan failed: %w", err)
	}

	// Stage 2: recover exact boundaries and apply structural checks.
	var verified []rawMatch
	for _, raw := range bestMatches {
		re := m.stage2[raw.grammarIdx]

		start, end := raw.start, raw.end
		if start == 0 {
			start, end, err = findMatchNearEnd(content, re, raw.end)
			if err != nil {
				continue
			}
		} else if re.FindIndex(content[start:end]) == nil {
			continue
		}

		value := string(content[start:end])
		if check := m.checks[raw.grammarIdx]; check != nil && !check(value) {
			continue
		}

		verified = append(verified, rawMatch{grammarIdx: raw.grammarIdx, start: start, end: end})
	}

	// Translate byte offsets to rune offsets for the overlap sweep.
	offsets := make([]int, 0, len(verified)*2)
	for _, v := range verified {
		offsets = append(offsets, v.start, v.end)
	}
	toRune := byteToRuneOffsets(content, offsets)

	cands := make([]candidate, 0, len(verified))
	for _, v := range verified {
		cands = append(cands, candidate{
			grammar: m.grammars[v.grammarIdx],
			start:   toRune[v.start],
			end:     toRune[v.end],
			value:   string(content[v.start:v.end]),
		})
	}

	winners := resolveOverlaps(dedupeCandidates(cands))
	runes := []rune(string(content))

	return buildMatches(blobID, winners, runes, m.contextLines), nil
}

// Close releases resources.
func (m *HyperscanMatcher) Close() error {
	if m.scratch != nil {
		if err := m.scratch.Free(); err != nil {
			return fmt.Errorf("failed to free scratch: %w", err)
		}
		m.scratch = nil
	}
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		m.db = nil
	}
	return nil
}

// findMatchNearEnd locates the match whose end offset is closest to the
// Hyperscan-reported end. Hyperscan runs without start-of-match tracking,
// so the start must be recovered by re-running the pattern.
func findMatchNearEnd(content []byte, re *regexp.Regexp, targetEnd int) (int, int, error) {
	// Search a window slightly past the reported end in case boundaries
	// shift during recovery.
	searchLimit := targetEnd + 100
	if searchLimit > len(content) {
		searchLimit = len(content)
	}

	locs := re.FindAllIndex(content[:searchLimit], -1)
	if len(locs) == 0 {
		return 0, 0, fmt.Errorf("pattern did not match near reported offset")
	}

	best := locs[0]
	bestDist := abs(best[1] - targetEnd)
	for _, loc := range locs[1:] {
		if d := abs(loc[1] - targetEnd); d < bestDist {
			best = loc
			bestDist = d
		}
	}

	return best[0], best[1], nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// byteToRuneOffsets maps each requested byte offset to its rune offset.
// Offsets must fall on UTF-8 boundaries, which regexp guarantees for
// match bounds.
func byteToRuneOffsets(content []byte, offsets []int) map[int]int {
	sorted := append([]int(nil), offsets...)
	sort.Ints(sorted)

	out := make(map[int]int, len(sorted))
	bytePos, runePos := 0, 0
	for _, off := range sorted {
		if _, ok := out[off]; ok {
			continue
		}
		for bytePos < off {
			_, size := utf8.DecodeRune(content[bytePos:])
			bytePos += size
			runePos++
		}
		out[off] = runePos
	}

	return out
}
