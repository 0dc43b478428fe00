//go:build wasm

package matcher

import (
	"fmt"

	"github.com/chainmask/chainmask/pkg/prefilter"
	"github.com/chainmask/chainmask/pkg/types"
)

// RegexpMatcher implements Matcher using regexp2 for WASM builds where
// Hyperscan's CGO dependency is unavailable. Scans run sequentially on a
// single goroutine; WASM runtimes don't benefit from the worker pool the
// native build uses.
//
// Unlike the native build, errors are returned rather than logged: the
// embedding host decides how to surface them.
type RegexpMatcher struct {
	compiled     []*compiledGrammar
	pf           *prefilter.Prefilter
	contextLines int
}

// NewRegexp creates a new regexp-based matcher.
func NewRegexp(grammars []*types.Grammar, contextLines int) (*RegexpMatcher, error) {
	compiled, err := compileGrammars(grammars)
	if err != nil {
		return nil, err
	}

	return &RegexpMatcher{
		compiled:     compiled,
		pf:           prefilter.New(grammars),
		contextLines: contextLines,
	}, nil
}

// Match scans content against all loaded grammars.
func (m *RegexpMatcher) Match(content []byte) ([]*types.Match, error) {
	blobID := types.ComputeBlobID(content)
	return m.MatchWithBlobID(content, blobID)
}

// MatchWithBlobID scans content with a known BlobID.
func (m *RegexpMatcher) MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error) {
	if len(content) == 0 {
		return nil, nil
	}

	active := make(map[string]bool)
	for _, g := range m.pf.Filter(content) {
		active[g.ID] = true
	}
	runes := []rune(string(content))

	var cands []candidate
	for _, cg := range m.compiled {
		if !active[cg.grammar.ID] {
			continue
		}
		found, err := collectCandidates(runes, cg)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", cg.grammar.ID, err)
		}
		cands = append(cands, found...)
	}

	winners := resolveOverlaps(dedupeCandidates(cands))

	return buildMatches(blobID, winners, runes, m.contextLines), nil
}

// Close releases resources (no-op for regexp).
func (m *RegexpMatcher) Close() error {
	return nil
}
