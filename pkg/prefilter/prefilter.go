// Package prefilter gates grammars on cheap literal anchor search before any
// regex runs.
package prefilter

import (
	"bytes"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/chainmask/chainmask/pkg/types"
)

// Prefilter uses Aho-Corasick for efficient anchor matching. A grammar with
// anchors only runs when one of them occurs in the content; grammars without
// anchors always run.
//
// Safe for concurrent use; the automaton marks visited nodes during a
// search, so searches serialize on a mutex.
type Prefilter struct {
	mu               sync.Mutex
	matcher          *ahocorasick.Matcher
	anchors          []string                    // anchor at each index
	anchorGrammars   map[string][]*types.Grammar // anchor -> grammars needing it
	noAnchorGrammars []*types.Grammar            // grammars without anchors (always checked)
}

// New creates a prefilter from grammars.
func New(grammars []*types.Grammar) *Prefilter {
	pf := &Prefilter{
		anchorGrammars:   make(map[string][]*types.Grammar),
		noAnchorGrammars: make([]*types.Grammar, 0),
	}

	// Collect all anchors and build mapping
	anchorSet := make(map[string]bool)
	for _, g := range grammars {
		if len(g.Anchors) == 0 {
			// No anchors = always check this grammar
			pf.noAnchorGrammars = append(pf.noAnchorGrammars, g)
		} else {
			// Map each anchor to this grammar
			for _, anchor := range g.Anchors {
				if !anchorSet[anchor] {
					anchorSet[anchor] = true
					pf.anchors = append(pf.anchors, anchor)
				}
				pf.anchorGrammars[anchor] = append(pf.anchorGrammars[anchor], g)
			}
		}
	}

	// Build Aho-Corasick matcher if we have anchors
	if len(pf.anchors) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.anchors)
	}

	return pf
}

// Filter returns grammars that might match content (anchor found OR no
// anchors defined). Anchors are lowercase literals and the content is
// lowercased once, so the search is case-insensitive.
func (pf *Prefilter) Filter(content []byte) []*types.Grammar {
	// Always include grammars without anchors
	result := make([]*types.Grammar, 0, len(pf.noAnchorGrammars))
	result = append(result, pf.noAnchorGrammars...)

	// If no Aho-Corasick matcher, return only no-anchor grammars
	if pf.matcher == nil {
		return result
	}

	// Find all anchor matches in content
	pf.mu.Lock()
	hits := pf.matcher.Match(bytes.ToLower(content))
	pf.mu.Unlock()

	// Collect unique grammars that have matching anchors
	seenGrammars := make(map[*types.Grammar]bool)
	for _, g := range pf.noAnchorGrammars {
		seenGrammars[g] = true
	}

	for _, hit := range hits {
		anchor := pf.anchors[hit]
		for _, g := range pf.anchorGrammars[anchor] {
			if !seenGrammars[g] {
				seenGrammars[g] = true
				result = append(result, g)
			}
		}
	}

	return result
}
