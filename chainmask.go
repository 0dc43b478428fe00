// Package chainmask detects and masks blockchain identifiers in free text.
//
// It recognizes Ethereum addresses and transaction hashes, ENS names,
// Bitcoin legacy and SegWit addresses, Bitcoin transaction IDs, Solana
// addresses and transaction signatures, plus the truncated display forms
// (0x1234...abcd) apps show in UIs and logs.
//
// # Basic Usage
//
// Create a detector with the builtin grammar pack and find identifiers:
//
//	detector, err := chainmask.NewDetector()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer detector.Close()
//
//	matches := detector.FindMatches("refund went to 0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
//	for _, match := range matches {
//	    fmt.Printf("%s %q at %d\n", match.Family, match.Value, match.Index)
//	}
//
// Matches come back ordered by position and never overlap. Indexes count
// characters (runes), not bytes, so they stay correct in text containing
// multi-byte characters.
//
// # Masking
//
// Pair the detector with pkg/mask to redact what it finds:
//
//	masker, _ := mask.New(mask.Config{Style: mask.StylePartial})
//	masked := masker.Apply(content, detector.FindMatches(content))
package chainmask

import (
	"fmt"
	"os"
	"sync"

	"github.com/chainmask/chainmask/pkg/grammar"
	"github.com/chainmask/chainmask/pkg/matcher"
	"github.com/chainmask/chainmask/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/chainmask/chainmask" without subpackages.
type (
	// Match is a single identifier detection result.
	Match = types.Match

	// Grammar describes one identifier format.
	Grammar = types.Grammar

	// Family classifies which identifier format a match belongs to.
	Family = types.Family

	// Location describes where a match was found within content.
	Location = types.Location

	// OffsetSpan is a half-open character range.
	OffsetSpan = types.OffsetSpan

	// Snippet contains the matched text with surrounding context.
	Snippet = types.Snippet
)

// Re-export the identifier families.
const (
	FamilyEvmAddress     = types.FamilyEvmAddress
	FamilyEvmTxHash      = types.FamilyEvmTxHash
	FamilyEnsName        = types.FamilyEnsName
	FamilyBtcLegacy      = types.FamilyBtcLegacy
	FamilyBtcSegwit      = types.FamilyBtcSegwit
	FamilyBtcTxID        = types.FamilyBtcTxID
	FamilySolAddress     = types.FamilySolAddress
	FamilySolTxSignature = types.FamilySolTxSignature
)

// Detector finds blockchain identifiers in text.
type Detector struct {
	matcher matcher.Matcher
	config  *detectorConfig
	mu      sync.RWMutex
}

// detectorConfig holds detector configuration.
type detectorConfig struct {
	grammars         []*types.Grammar
	contextLines     int
	withoutTruncated bool
}

// Option configures a Detector.
type Option func(*detectorConfig)

// WithGrammars uses a custom grammar set instead of the builtin pack.
func WithGrammars(grammars []*Grammar) Option {
	return func(c *detectorConfig) {
		c.grammars = grammars
	}
}

// WithContextLines sets the number of context lines captured around each
// match. Default is 2 lines before and after.
func WithContextLines(lines int) Option {
	return func(c *detectorConfig) {
		c.contextLines = lines
	}
}

// WithoutTruncated drops the truncated-form grammars, so elided display
// forms like 0x1234...abcd are not reported.
func WithoutTruncated() Option {
	return func(c *detectorConfig) {
		c.withoutTruncated = true
	}
}

// NewDetector creates a Detector with the given options.
//
// By default, the detector:
//   - Uses the full builtin grammar pack, truncated forms included
//   - Captures 2 lines of context around matches
//
// Example:
//
//	// Default detector
//	detector, err := chainmask.NewDetector()
//
//	// Full-length identifiers only
//	detector, err := chainmask.NewDetector(chainmask.WithoutTruncated())
//
//	// With a custom grammar set
//	detector, err := chainmask.NewDetector(chainmask.WithGrammars(myGrammars))
func NewDetector(opts ...Option) (*Detector, error) {
	config := &detectorConfig{
		contextLines: 2,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.grammars == nil {
		loader := grammar.NewLoader()
		grammars, err := loader.LoadBuiltinGrammars()
		if err != nil {
			return nil, fmt.Errorf("loading builtin grammars: %w", err)
		}
		config.grammars = grammars
	}

	if config.withoutTruncated {
		config.grammars = grammar.ExcludeTruncated(config.grammars)
	}

	m, err := matcher.New(matcher.Config{
		Grammars:     config.grammars,
		ContextLines: config.contextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("creating matcher: %w", err)
	}

	return &Detector{
		matcher: m,
		config:  config,
	}, nil
}

// FindMatches scans text and returns every identifier occurrence, ordered
// by position and pairwise non-overlapping.
//
// FindMatches is total: it accepts any input, never panics, and returns an
// empty list both for text with no identifiers and in the worst case when
// the engine gives up on pathological input. It has no side effects, so
// calling it twice on the same text yields the same matches. Callers that
// need to distinguish engine errors from clean empty results should use
// ScanString.
func (d *Detector) FindMatches(text string) []*Match {
	matches, err := d.ScanString(text)
	if err != nil {
		return nil
	}
	return matches
}

// ScanString scans a string and returns all matches.
//
// Example:
//
//	matches, err := detector.ScanString("deposit to bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
//	if err != nil {
//	    return err
//	}
//	for _, match := range matches {
//	    fmt.Printf("found: %s\n", match.Value)
//	}
func (d *Detector) ScanString(content string) ([]*Match, error) {
	return d.ScanBytes([]byte(content))
}

// ScanBytes scans raw bytes and returns all matches. Offsets still count
// runes of the decoded text, not bytes.
func (d *Detector) ScanBytes(content []byte) ([]*Match, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.matcher.Match(content)
}

// ScanFile reads and scans a file.
//
// Example:
//
//	matches, err := detector.ScanFile("/path/to/support-ticket.txt")
func (d *Detector) ScanFile(path string) ([]*Match, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return d.ScanBytes(content)
}

// Close releases detector resources.
// Always call Close when done with the detector.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.matcher != nil {
		d.matcher.Close()
	}
	return nil
}

// GrammarCount returns the number of loaded grammars.
func (d *Detector) GrammarCount() int {
	return len(d.config.grammars)
}

// Grammars returns a copy of the loaded grammars.
func (d *Detector) Grammars() []*Grammar {
	grammars := make([]*Grammar, len(d.config.grammars))
	copy(grammars, d.config.grammars)
	return grammars
}

// LoadGrammarsFromFile loads grammar definitions from a YAML file.
// Use this with WithGrammars to create a detector with custom grammars.
//
// Example:
//
//	grammars, err := chainmask.LoadGrammarsFromFile("/path/to/grammars.yml")
//	if err != nil {
//	    return err
//	}
//	detector, err := chainmask.NewDetector(chainmask.WithGrammars(grammars))
func LoadGrammarsFromFile(path string) ([]*Grammar, error) {
	loader := grammar.NewLoader()
	return loader.LoadGrammarsFile(path)
}

// LoadBuiltinGrammars returns the builtin grammar pack.
// This can be used to inspect available grammars or build a subset.
//
// Example:
//
//	grammars, err := chainmask.LoadBuiltinGrammars()
//	if err != nil {
//	    return err
//	}
//
//	// Keep only the Bitcoin grammars
//	var btc []*chainmask.Grammar
//	for _, g := range grammars {
//	    if g.Family.Network() == "bitcoin" {
//	        btc = append(btc, g)
//	    }
//	}
//	detector, err := chainmask.NewDetector(chainmask.WithGrammars(btc))
func LoadBuiltinGrammars() ([]*Grammar, error) {
	loader := grammar.NewLoader()
	return loader.LoadBuiltinGrammars()
}
