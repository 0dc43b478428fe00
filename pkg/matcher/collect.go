package matcher

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/chainmask/chainmask/pkg/grammar"
	"github.com/chainmask/chainmask/pkg/types"
)

// candidate is a grammar hit before overlap resolution.
// Offsets count runes into the scanned content.
type candidate struct {
	grammar *types.Grammar
	start   int // inclusive
	end     int // exclusive
	value   string
}

// compiledGrammar pairs a grammar with its compiled pattern and resolved
// structural check.
type compiledGrammar struct {
	grammar *types.Grammar
	re      *regexp2.Regexp
	check   grammar.CheckFunc
}

// compileGrammars compiles every pattern with regexp2 and resolves structural
// checks, catching errors before any scan runs.
func compileGrammars(grammars []*types.Grammar) ([]*compiledGrammar, error) {
	if len(grammars) == 0 {
		return nil, fmt.Errorf("no grammars provided")
	}

	compiled := make([]*compiledGrammar, 0, len(grammars))
	for _, g := range grammars {
		// Try RE2 mode first (safer, no backtracking)
		re, err := regexp2.Compile(g.Pattern, regexp2.RE2|regexp2.Multiline)
		if err != nil {
			// Fallback to default Perl-compatible mode if RE2 fails
			re, err = regexp2.Compile(g.Pattern, regexp2.None)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern %q for grammar %s: %w", g.Pattern, g.ID, err)
			}
		}
		// Set timeout to prevent catastrophic backtracking
		re.MatchTimeout = 5 * time.Second

		check, err := grammar.LookupCheck(g.Check)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", g.ID, err)
		}

		compiled = append(compiled, &compiledGrammar{grammar: g, re: re, check: check})
	}

	return compiled, nil
}

// collectCandidates runs one compiled grammar over rune content and returns
// every hit that survives the grammar's structural check. Offsets are rune
// offsets, which regexp2 reports natively.
func collectCandidates(content []rune, cg *compiledGrammar) ([]candidate, error) {
	var cands []candidate

	m, err := cg.re.FindRunesMatch(content)
	if err != nil {
		return nil, err
	}
	for m != nil {
		value := m.String()
		if cg.check == nil || cg.check(value) {
			cands = append(cands, candidate{
				grammar: cg.grammar,
				start:   m.Index,
				end:     m.Index + m.Length,
				value:   value,
			})
		}
		m, err = cg.re.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}

	return cands, nil
}

// dedupeCandidates drops duplicate (grammar, span) candidates. Overlapping
// chunks report the shared region twice; only one copy may enter the sweep.
func dedupeCandidates(cands []candidate) []candidate {
	if len(cands) <= 1 {
		return cands
	}

	seen := make(map[string]bool, len(cands))
	result := make([]candidate, 0, len(cands))
	for _, c := range cands {
		key := fmt.Sprintf("%s:%d:%d", c.grammar.ID, c.start, c.end)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, c)
	}
	return result
}

// buildMatches converts winning candidates into matches. Winners must be
// sorted by start offset so the position tracker can resolve line and column
// for every match in one forward pass over the content.
func buildMatches(blobID types.BlobID, winners []candidate, content []rune, contextLines int) []*types.Match {
	matches := make([]*types.Match, 0, len(winners))

	tracker := types.NewPositionTracker(content)
	for _, c := range winners {
		line, column := tracker.Advance(c.start)
		endLine, endColumn := tracker.Advance(c.end)

		var before, after []byte
		if contextLines > 0 {
			before, after = ExtractContext(content, c.start, c.end, contextLines)
		}

		m := &types.Match{
			Index:       int64(c.start),
			Value:       c.value,
			Family:      c.grammar.Family,
			Truncated:   c.grammar.Truncated,
			GrammarID:   c.grammar.ID,
			GrammarName: c.grammar.Name,
			BlobID:      blobID,
			Location: types.Location{
				Offset: types.OffsetSpan{
					Start: int64(c.start),
					End:   int64(c.end),
				},
				Source: types.SourceSpan{
					Start: types.SourcePoint{Line: line, Column: column},
					End:   types.SourcePoint{Line: endLine, Column: endColumn},
				},
			},
			Snippet: types.Snippet{
				Before:   before,
				Matching: []byte(c.value),
				After:    after,
			},
		}

		m.StructuralID = m.ComputeStructuralID(c.grammar.StructuralID)
		m.FindingID = types.ComputeFindingID(c.grammar.StructuralID, c.value)

		matches = append(matches, m)
	}

	return matches
}
