package grammar

// yamlGrammar is the intermediate struct for parsing the YAML grammar format.
// Maps YAML fields to types.Grammar structure.
type yamlGrammar struct {
	Name             string   `yaml:"name"`
	ID               string   `yaml:"id"`
	Family           string   `yaml:"family"`
	Truncated        bool     `yaml:"truncated,omitempty"`
	Pattern          string   `yaml:"pattern"`
	Priority         int      `yaml:"priority"`
	Anchors          []string `yaml:"anchors,omitempty"`
	Check            string   `yaml:"check,omitempty"`
	Description      string   `yaml:"description,omitempty"`
	Examples         []string `yaml:"examples,omitempty"`
	NegativeExamples []string `yaml:"negative_examples,omitempty"`
	References       []string `yaml:"references,omitempty"`
}

// yamlGrammarsFile represents the top-level structure of a grammars YAML file,
// a "grammars" array at the top level.
type yamlGrammarsFile struct {
	Grammars []yamlGrammar `yaml:"grammars"`
}
