package scanner

import (
	"encoding/json"
	"sync"

	"github.com/chainmask/chainmask/pkg/grammar"
	"github.com/chainmask/chainmask/pkg/matcher"
	"github.com/chainmask/chainmask/pkg/store"
	"github.com/chainmask/chainmask/pkg/types"
)

var (
	// cachedBuiltinGrammars holds the builtin pack loaded once per process
	cachedBuiltinGrammars []*types.Grammar
	cachedGrammarsErr     error
	cacheOnce             sync.Once
)

// loadBuiltinGrammarsCached loads the builtin grammar pack once and caches it
func loadBuiltinGrammarsCached() ([]*types.Grammar, error) {
	cacheOnce.Do(func() {
		loader := grammar.NewLoader()
		cachedBuiltinGrammars, cachedGrammarsErr = loader.LoadBuiltinGrammars()
	})
	return cachedBuiltinGrammars, cachedGrammarsErr
}

// Core wraps the matcher and store for scanning operations. Matches are
// stored per location; findings aggregate repeated values, one finding per
// distinct identifier. Core methods are expected to be called from a single
// goroutine (the serve loop or the wasm bridge).
type Core struct {
	matcher  matcher.Matcher
	store    store.Store
	dedup    *matcher.Deduplicator
	grammars []*types.Grammar
	logger   DebugLogger
}

// NewCore creates a new Core scanner with the given grammars
// grammarsJSON can be:
// - "" or "builtin" to load the builtin grammar pack (cached)
// - JSON string with a custom grammar array
func NewCore(grammarsJSON string, logger DebugLogger) (*Core, error) {
	if logger == nil {
		logger = NoopLogger{}
	}

	logger.Log("NewCore starting...")

	// Parse or load grammars
	var grammars []*types.Grammar
	if grammarsJSON == "" || grammarsJSON == "builtin" {
		logger.Log("Loading builtin grammars (cached)...")
		var err error
		grammars, err = loadBuiltinGrammarsCached()
		if err != nil {
			logger.Log("loadBuiltinGrammarsCached failed: %v", err)
			return nil, err
		}
		logger.Log("Loaded %d builtin grammars", len(grammars))
	} else {
		logger.Log("Parsing custom grammars JSON...")
		if err := json.Unmarshal([]byte(grammarsJSON), &grammars); err != nil {
			logger.Log("JSON unmarshal failed: %v", err)
			return nil, err
		}
		for _, g := range grammars {
			if g != nil && g.StructuralID == "" {
				g.StructuralID = g.ComputeStructuralID()
			}
		}
		if err := grammar.ValidateGrammars(grammars); err != nil {
			logger.Log("grammar validation failed: %v", err)
			return nil, err
		}
		logger.Log("Parsed %d custom grammars", len(grammars))
	}

	// Create matcher
	logger.Log("Creating matcher with %d grammars...", len(grammars))
	m, err := matcher.New(matcher.Config{
		Grammars:     grammars,
		ContextLines: 2,
	})
	if err != nil {
		logger.Log("matcher.New failed: %v", err)
		return nil, err
	}
	logger.Log("Matcher created successfully")

	// Create in-memory store
	logger.Log("Creating store...")
	s, err := store.New(store.Config{Path: ":memory:"})
	if err != nil {
		logger.Log("store.New failed: %v", err)
		m.Close()
		return nil, err
	}
	logger.Log("Store created successfully")

	logger.Log("NewCore complete")
	return &Core{
		matcher:  m,
		store:    s,
		dedup:    matcher.NewContentDeduplicator(),
		grammars: grammars,
		logger:   logger,
	}, nil
}

// Scan scans a single content string
func (c *Core) Scan(content, source string) (*ScanResult, error) {
	matches, err := c.matcher.Match([]byte(content))
	if err != nil {
		return nil, err
	}

	if err := c.record(matches); err != nil {
		return nil, err
	}

	return &ScanResult{
		Source:  source,
		Matches: matches,
	}, nil
}

// Detect finds identifiers in content without recording anything. Masking
// flows use it: the masked text should not show up as findings.
func (c *Core) Detect(content string) ([]*types.Match, error) {
	return c.matcher.Match([]byte(content))
}

// ScanBatch scans multiple content items
func (c *Core) ScanBatch(items []ContentItem) (*BatchScanResult, error) {
	var results []ScanResult
	total := 0

	for _, item := range items {
		matches, err := c.matcher.Match([]byte(item.Content))
		if err != nil {
			// Skip items that fail to scan
			continue
		}

		if err := c.record(matches); err != nil {
			return nil, err
		}

		results = append(results, ScanResult{
			Source:  item.Source,
			Matches: matches,
		})
		total += len(matches)
	}

	return &BatchScanResult{
		Results: results,
		Total:   total,
	}, nil
}

// record stores matches and aggregates first-seen values into findings.
func (c *Core) record(matches []*types.Match) error {
	for _, match := range matches {
		if err := c.store.AddMatch(match); err != nil {
			return err
		}
		if c.dedup.IsDuplicate(match) {
			continue
		}
		c.dedup.Add(match)
		if err := c.store.AddFinding(findingFromMatch(match)); err != nil {
			return err
		}
	}
	return nil
}

// Findings returns the distinct identifiers seen across all scans so far.
func (c *Core) Findings() ([]*types.Finding, error) {
	return c.store.GetFindings()
}

// Grammars returns the grammar pack this core scans with, custom packs
// included.
func (c *Core) Grammars() []*types.Grammar {
	return c.grammars
}

// Close releases scanner resources
func (c *Core) Close() {
	if c.matcher != nil {
		c.matcher.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// GetBuiltinGrammars returns the built-in grammar pack (cached)
func GetBuiltinGrammars() ([]*types.Grammar, error) {
	return loadBuiltinGrammarsCached()
}

func findingFromMatch(m *types.Match) *types.Finding {
	return &types.Finding{
		ID:        m.FindingID,
		GrammarID: m.GrammarID,
		Family:    m.Family,
		Truncated: m.Truncated,
		Value:     m.Value,
	}
}
