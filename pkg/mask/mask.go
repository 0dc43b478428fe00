// Package mask rewrites detected identifier spans in text.
//
// Masking is a collaborator on top of the detection engine: it consumes a
// match list and splices replacements over the spans. Masking state lives in
// an explicit Masker value threaded by the caller; the engine itself never
// consults it.
package mask

import (
	"fmt"
	"strings"

	"github.com/chainmask/chainmask/pkg/types"
)

// Style selects how a matched identifier is rewritten.
type Style string

const (
	// StylePartial keeps the head and tail of the identifier with an
	// ellipsis between, the way wallets display truncated addresses.
	StylePartial Style = "partial"
	// StyleFull replaces the identifier with a placeholder string.
	StyleFull Style = "full"
	// StyleFixed replaces the identifier with an asterisk run of the same
	// character length, preserving column alignment in tabular text.
	StyleFixed Style = "fixed"
)

// ParseStyle converts a string to a Style, rejecting unknown values.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StylePartial, StyleFull, StyleFixed:
		return Style(s), nil
	}
	return "", fmt.Errorf("unknown mask style: %q (want partial, full or fixed)", s)
}

const (
	DefaultHead        = 6
	DefaultTail        = 4
	DefaultPlaceholder = "[masked]"

	// Partial masking elides with the same single-rune ellipsis that
	// truncated display forms use, so masked output is still recognized
	// as a truncated identifier on a rescan.
	ellipsis = "…"
)

// Config controls how matched identifiers are rewritten. Zero-valued fields
// take the package defaults.
type Config struct {
	Style       Style
	Head        int    // partial style: runes kept from the front
	Tail        int    // partial style: runes kept from the end
	Placeholder string // full style replacement text
	// Families restricts masking to the listed families. Empty means all.
	Families []types.Family
}

// DefaultConfig returns the configuration used when Config fields are zero:
// partial style keeping 6 head and 4 tail runes.
func DefaultConfig() Config {
	return Config{
		Style:       StylePartial,
		Head:        DefaultHead,
		Tail:        DefaultTail,
		Placeholder: DefaultPlaceholder,
	}
}

// Masker rewrites matched identifier spans in text.
// A Masker is immutable after construction and safe for concurrent use.
type Masker struct {
	style       Style
	head        int
	tail        int
	placeholder string
	families    map[types.Family]struct{} // nil means all families
}

// New creates a Masker from cfg, applying defaults to zero-valued fields.
func New(cfg Config) (*Masker, error) {
	style := cfg.Style
	if style == "" {
		style = StylePartial
	}
	if _, err := ParseStyle(string(style)); err != nil {
		return nil, err
	}
	if cfg.Head < 0 || cfg.Tail < 0 {
		return nil, fmt.Errorf("mask head and tail must be non-negative (got %d, %d)", cfg.Head, cfg.Tail)
	}

	m := &Masker{
		style:       style,
		head:        cfg.Head,
		tail:        cfg.Tail,
		placeholder: cfg.Placeholder,
	}
	if m.head == 0 {
		m.head = DefaultHead
	}
	if m.tail == 0 {
		m.tail = DefaultTail
	}
	if m.placeholder == "" {
		m.placeholder = DefaultPlaceholder
	}

	if len(cfg.Families) > 0 {
		m.families = make(map[types.Family]struct{}, len(cfg.Families))
		for _, f := range cfg.Families {
			if !f.Valid() {
				return nil, fmt.Errorf("unknown family: %q", f)
			}
			m.families[f] = struct{}{}
		}
	}
	return m, nil
}

// Value returns the masked rendering of a single identifier value.
func (m *Masker) Value(value string) string {
	switch m.style {
	case StyleFull:
		return m.placeholder
	case StyleFixed:
		return strings.Repeat("*", len([]rune(value)))
	}

	runes := []rune(value)
	if len(runes) <= m.head+m.tail {
		// Too short for head+tail to hide anything; replace outright.
		return m.placeholder
	}
	return string(runes[:m.head]) + ellipsis + string(runes[len(runes)-m.tail:])
}

// Apply splices masked renderings over every selected match span in content
// and returns the result. Matches are expected in engine order (ascending
// Index, pairwise non-overlapping); unmasked segments pass through verbatim.
//
// Spans that fall outside the content, overlap an earlier splice, or no
// longer contain their recorded value are left untouched: that means content
// is not the text the matches were produced from, and corrupting it would be
// worse than under-masking.
func (m *Masker) Apply(content string, matches []*types.Match) string {
	if len(matches) == 0 {
		return content
	}

	runes := []rune(content)
	var b strings.Builder
	b.Grow(len(content))

	last := 0
	for _, match := range matches {
		if !m.selected(match.Family) {
			continue
		}
		start := int(match.Index)
		end := start + len([]rune(match.Value))
		if start < last || end > len(runes) {
			continue
		}
		if string(runes[start:end]) != match.Value {
			continue
		}
		b.WriteString(string(runes[last:start]))
		b.WriteString(m.Value(match.Value))
		last = end
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

func (m *Masker) selected(f types.Family) bool {
	if m.families == nil {
		return true
	}
	_, ok := m.families[f]
	return ok
}
