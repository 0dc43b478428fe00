package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chainmask/chainmask/pkg/types"
)

// FilterConfig specifies include and exclude patterns for grammar filtering.
type FilterConfig struct {
	Include []string // Regex patterns - only matching grammars included
	Exclude []string // Regex patterns - matching grammars excluded
}

// ParsePatterns splits a comma-separated string into individual patterns.
// Patterns are trimmed of whitespace.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include and exclude patterns to grammars.
// Include is applied first, then exclude.
// Empty include means "include all".
// Returns error if any pattern is invalid regex.
func Filter(grammars []*types.Grammar, config FilterConfig) ([]*types.Grammar, error) {
	if len(grammars) == 0 {
		return grammars, nil
	}

	// Compile include patterns
	var includeRegexes []*regexp.Regexp
	for _, pattern := range config.Include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		includeRegexes = append(includeRegexes, re)
	}

	// Compile exclude patterns
	var excludeRegexes []*regexp.Regexp
	for _, pattern := range config.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		excludeRegexes = append(excludeRegexes, re)
	}

	// Apply include filter
	filtered := grammars
	if len(includeRegexes) > 0 {
		filtered = applyInclude(grammars, includeRegexes)
	}

	// Apply exclude filter
	if len(excludeRegexes) > 0 {
		filtered = applyExclude(filtered, excludeRegexes)
	}

	return filtered, nil
}

// ExcludeTruncated drops grammars for truncated display forms, leaving only
// grammars that match complete identifiers.
func ExcludeTruncated(grammars []*types.Grammar) []*types.Grammar {
	result := make([]*types.Grammar, 0, len(grammars))
	for _, g := range grammars {
		if !g.Truncated {
			result = append(result, g)
		}
	}
	return result
}

// =============================================================================
// HELPERS
// =============================================================================

func applyInclude(grammars []*types.Grammar, regexes []*regexp.Regexp) []*types.Grammar {
	result := make([]*types.Grammar, 0)
	for _, g := range grammars {
		if matchesAny(g.ID, regexes) {
			result = append(result, g)
		}
	}
	return result
}

func applyExclude(grammars []*types.Grammar, regexes []*regexp.Regexp) []*types.Grammar {
	result := make([]*types.Grammar, 0)
	for _, g := range grammars {
		if !matchesAny(g.ID, regexes) {
			result = append(result, g)
		}
	}
	return result
}

func matchesAny(grammarID string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(grammarID) {
			return true
		}
	}
	return false
}
