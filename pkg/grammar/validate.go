package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chainmask/chainmask/pkg/types"
)

// ValidateGrammar checks grammar consistency and required fields.
// Returns error if grammar is invalid.
func ValidateGrammar(g *types.Grammar) error {
	if g == nil {
		return fmt.Errorf("grammar is nil")
	}

	// Check required fields
	if g.ID == "" {
		return fmt.Errorf("grammar ID is required")
	}
	if g.Name == "" {
		return fmt.Errorf("grammar name is required")
	}
	if g.Pattern == "" {
		return fmt.Errorf("grammar pattern is required")
	}
	if !g.Family.Valid() {
		return fmt.Errorf("grammar %s has unknown family %q", g.ID, g.Family)
	}
	if g.Priority < 0 {
		return fmt.Errorf("grammar %s has negative priority %d", g.ID, g.Priority)
	}

	// Patterns must stay within RE2 syntax so every matcher engine can
	// compile them.
	if _, err := regexp.Compile(g.Pattern); err != nil {
		return fmt.Errorf("invalid pattern regex for grammar %s: %w", g.ID, err)
	}

	// Anchors are searched in a lowercased copy of the input, so they must
	// be lowercase literals.
	for _, anchor := range g.Anchors {
		if anchor == "" {
			return fmt.Errorf("grammar %s has an empty anchor", g.ID)
		}
		if anchor != strings.ToLower(anchor) {
			return fmt.Errorf("grammar %s anchor %q must be lowercase", g.ID, anchor)
		}
	}

	// Referenced structural check must exist
	if _, err := LookupCheck(g.Check); err != nil {
		return fmt.Errorf("grammar %s: %w", g.ID, err)
	}

	// Validate StructuralID matches computed value
	expectedID := g.ComputeStructuralID()
	if g.StructuralID != "" && g.StructuralID != expectedID {
		return fmt.Errorf("grammar %s has inconsistent StructuralID: got %s, expected %s",
			g.ID, g.StructuralID, expectedID)
	}

	return nil
}

// ValidateGrammars validates each grammar and rejects duplicate IDs.
func ValidateGrammars(grammars []*types.Grammar) error {
	seen := make(map[string]bool)
	for _, g := range grammars {
		if err := ValidateGrammar(g); err != nil {
			return err
		}
		if seen[g.ID] {
			return fmt.Errorf("duplicate grammar ID: %s", g.ID)
		}
		seen[g.ID] = true
	}
	return nil
}
