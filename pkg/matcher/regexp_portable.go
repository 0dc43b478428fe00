//go:build !wasm

package matcher

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/chainmask/chainmask/pkg/prefilter"
	"github.com/chainmask/chainmask/pkg/types"
)

const parallelThreshold = 10000 // runes

// PortableRegexpMatcher implements Matcher using regexp2 for native (non-WASM)
// builds. This is the non-CGO default, offering portability at the cost of raw
// throughput.
//
// Performance trade-offs:
// - Does NOT require CGO (can compile with CGO_ENABLED=0)
// - Slower than HyperscanMatcher on large inputs
// - Reports rune offsets natively, no byte-offset translation step
//
// Pipeline per scan: anchor prefilter picks the grammars that can possibly
// match, each grammar collects candidates (in parallel for large content),
// structural checks discard implausible values, and a single overlap sweep
// produces the final ordered match list.
//
// Thread safety: safe for concurrent use. Compiled patterns and the
// prefilter are read-only after initialization and every scan keeps its
// state in locals.
type PortableRegexpMatcher struct {
	compiled     []*compiledGrammar
	pf           *prefilter.Prefilter
	chunking     ChunkConfig
	contextLines int
}

// NewPortableRegexp creates a new portable regexp-based matcher (non-CGO).
func NewPortableRegexp(grammars []*types.Grammar, contextLines int) (*PortableRegexpMatcher, error) {
	compiled, err := compileGrammars(grammars)
	if err != nil {
		return nil, err
	}

	return &PortableRegexpMatcher{
		compiled:     compiled,
		pf:           prefilter.New(grammars),
		chunking:     DefaultChunkConfig(),
		contextLines: contextLines,
	}, nil
}

// Match scans content against all loaded grammars.
func (m *PortableRegexpMatcher) Match(content []byte) ([]*types.Match, error) {
	blobID := types.ComputeBlobID(content)
	return m.MatchWithBlobID(content, blobID)
}

// MatchWithBlobID scans content with a known BlobID.
func (m *PortableRegexpMatcher) MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error) {
	if len(content) == 0 {
		return nil, nil
	}

	active := activeSet(m.pf.Filter(content))
	runes := []rune(string(content))

	var cands []candidate
	for _, chunk := range ChunkContent(runes, m.chunking) {
		cands = append(cands, m.collectChunk(chunk, active)...)
	}

	cands = dedupeCandidates(cands)
	winners := resolveOverlaps(cands)

	return buildMatches(blobID, winners, runes, m.contextLines), nil
}

// Close releases resources (no-op for regexp).
func (m *PortableRegexpMatcher) Close() error {
	return nil
}

// collectChunk gathers candidates from one chunk, rebased to absolute
// offsets. Large chunks fan grammars out to a worker pool.
func (m *PortableRegexpMatcher) collectChunk(chunk Chunk, active map[string]bool) []candidate {
	if len(chunk.Content) >= parallelThreshold {
		return m.collectChunkParallel(chunk, active)
	}
	return m.collectChunkSequential(chunk, active)
}

func (m *PortableRegexpMatcher) collectChunkSequential(chunk Chunk, active map[string]bool) []candidate {
	var cands []candidate
	for _, cg := range m.compiled {
		if !active[cg.grammar.ID] {
			continue
		}
		found, err := collectCandidates(chunk.Content, cg)
		if err != nil {
			warnGrammarError(cg.grammar.ID, err)
			continue
		}
		cands = append(cands, rebase(found, chunk.StartOffset)...)
	}
	return cands
}

func (m *PortableRegexpMatcher) collectChunkParallel(chunk Chunk, active map[string]bool) []candidate {
	jobs := make(chan *compiledGrammar, len(m.compiled))
	results := make(chan []candidate, len(m.compiled))

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(m.compiled) {
		numWorkers = len(m.compiled)
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cg := range jobs {
				found, err := collectCandidates(chunk.Content, cg)
				if err != nil {
					warnGrammarError(cg.grammar.ID, err)
					continue
				}
				if len(found) > 0 {
					results <- rebase(found, chunk.StartOffset)
				}
			}
		}()
	}

	for _, cg := range m.compiled {
		if active[cg.grammar.ID] {
			jobs <- cg
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var cands []candidate
	for found := range results {
		cands = append(cands, found...)
	}
	return cands
}

// activeSet converts the prefilter's grammar list into ID membership.
func activeSet(grammars []*types.Grammar) map[string]bool {
	set := make(map[string]bool, len(grammars))
	for _, g := range grammars {
		set[g.ID] = true
	}
	return set
}

// rebase shifts chunk-relative candidate offsets to absolute offsets.
func rebase(cands []candidate, offset int) []candidate {
	for i := range cands {
		cands[i].start += offset
		cands[i].end += offset
	}
	return cands
}

// warnGrammarError reports a grammar that failed mid-scan. The grammar is
// skipped for this blob; other grammars still run.
func warnGrammarError(grammarID string, err error) {
	if strings.Contains(err.Error(), "match timeout") {
		fmt.Fprintf(os.Stderr, "[warn] grammar %s regex timeout on content (skipping grammar for this blob)\n", grammarID)
		return
	}
	fmt.Fprintf(os.Stderr, "[warn] grammar %s regex error (skipping grammar for this blob): %v\n", grammarID, err)
}
