package grammar

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/chainmask/chainmask/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader handles loading grammars from YAML files.
type Loader struct {
	fs fs.FS // embedded filesystem for built-in grammars
}

// NewLoader creates a loader backed by the embedded built-in grammar pack.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinGrammarsFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// LoadGrammar loads a single grammar from YAML bytes.
// Returns error if YAML is invalid or multiple grammars are present.
func (l *Loader) LoadGrammar(data []byte) (*types.Grammar, error) {
	var yamlFile yamlGrammarsFile
	if err := yaml.Unmarshal(data, &yamlFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(yamlFile.Grammars) == 0 {
		return nil, fmt.Errorf("no grammars found in YAML")
	}
	if len(yamlFile.Grammars) > 1 {
		return nil, fmt.Errorf("expected single grammar, found %d", len(yamlFile.Grammars))
	}

	return convertYAMLGrammar(yamlFile.Grammars[0]), nil
}

// LoadGrammars loads all grammars from YAML bytes, preserving file order.
func (l *Loader) LoadGrammars(data []byte) ([]*types.Grammar, error) {
	var yamlFile yamlGrammarsFile
	if err := yaml.Unmarshal(data, &yamlFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(yamlFile.Grammars) == 0 {
		return nil, fmt.Errorf("no grammars found in YAML")
	}

	grammars := make([]*types.Grammar, 0, len(yamlFile.Grammars))
	for _, yg := range yamlFile.Grammars {
		grammars = append(grammars, convertYAMLGrammar(yg))
	}
	return grammars, nil
}

// LoadGrammarFile loads a single grammar from a YAML file path.
func (l *Loader) LoadGrammarFile(path string) (*types.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadGrammar(data)
}

// LoadGrammarsFile loads all grammars from a YAML file path.
func (l *Loader) LoadGrammarsFile(path string) ([]*types.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadGrammars(data)
}

// LoadBuiltinGrammars loads the embedded grammar pack.
// Grammars are returned sorted by priority, then ID, so callers see a
// deterministic order regardless of file layout.
func (l *Loader) LoadBuiltinGrammars() ([]*types.Grammar, error) {
	var grammars []*types.Grammar

	err := fs.WalkDir(l.fs, "grammars", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		// Parse all grammars from the file
		var yamlFile yamlGrammarsFile
		if err := yaml.Unmarshal(data, &yamlFile); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, yg := range yamlFile.Grammars {
			grammars = append(grammars, convertYAMLGrammar(yg))
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(grammars, func(i, j int) bool {
		if grammars[i].Priority != grammars[j].Priority {
			return grammars[i].Priority < grammars[j].Priority
		}
		return grammars[i].ID < grammars[j].ID
	})

	return grammars, nil
}

// convertYAMLGrammar converts yamlGrammar to types.Grammar and computes StructuralID.
func convertYAMLGrammar(yg yamlGrammar) *types.Grammar {
	g := &types.Grammar{
		ID:               yg.ID,
		Name:             yg.Name,
		Family:           types.Family(yg.Family),
		Truncated:        yg.Truncated,
		Pattern:          yg.Pattern,
		Priority:         yg.Priority,
		Anchors:          yg.Anchors,
		Check:            yg.Check,
		Description:      yg.Description,
		Examples:         yg.Examples,
		NegativeExamples: yg.NegativeExamples,
		References:       yg.References,
	}
	g.StructuralID = g.ComputeStructuralID()
	return g
}
