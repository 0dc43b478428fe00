// Package sarif renders scan results as SARIF 2.1.0 so they can be loaded
// into code scanning UIs. Grammars map to SARIF rules and matches to
// results.
package sarif

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/chainmask/chainmask/pkg/types"
)

const (
	SchemaURI   = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version     = "2.1.0"
	ToolName    = "chainmask"
	ToolVersion = "0.1.0"
)

// Report is the top-level SARIF document.
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run is a single tool invocation.
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver holds tool metadata and the rule (grammar) catalog.
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule is one identifier grammar, exposed under its grammar ID.
type Rule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription ShortDescription `json:"shortDescription"`
	HelpURI          string           `json:"helpUri,omitempty"`
}

// ShortDescription carries rule description text.
type ShortDescription struct {
	Text string `json:"text"`
}

// Result is one detected identifier occurrence.
type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations"`
}

// Message carries the result message.
type Message struct {
	Text string `json:"text"`
}

// Location points at where a result was found.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies the file location.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies the file.
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region is the line/column range of a result.
type Region struct {
	StartLine   int     `json:"startLine"`
	StartColumn int     `json:"startColumn"`
	EndLine     int     `json:"endLine"`
	EndColumn   int     `json:"endColumn"`
	Snippet     Snippet `json:"snippet,omitempty"`
}

// Snippet contains the matched text.
type Snippet struct {
	Text string `json:"text"`
}

// NewReport creates an empty single-run report.
func NewReport() *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: ToolVersion,
						Rules:   []Rule{},
					},
				},
				Results: []Result{},
			},
		},
	}
}

// AddGrammar registers a grammar in the rule catalog.
func (r *Report) AddGrammar(grammar *types.Grammar) {
	rule := Rule{
		ID:   grammar.ID,
		Name: grammar.Name,
		ShortDescription: ShortDescription{
			Text: grammar.Description,
		},
	}

	if len(grammar.References) > 0 {
		rule.HelpURI = grammar.References[0]
	}

	r.Runs[0].Tool.Driver.Rules = append(r.Runs[0].Tool.Driver.Rules, rule)
}

// AddResult appends one match found in filePath. Identifier occurrences are
// informational rather than defects, so results carry level "note".
func (r *Report) AddResult(match *types.Match, filePath string) {
	uri := formatFileURI(filePath)

	region := Region{
		StartLine:   match.Location.Source.Start.Line,
		StartColumn: match.Location.Source.Start.Column,
		EndLine:     match.Location.Source.End.Line,
		EndColumn:   match.Location.Source.End.Column,
	}

	if len(match.Snippet.Matching) > 0 {
		region.Snippet = Snippet{
			Text: string(match.Snippet.Matching),
		}
	}

	message := match.GrammarName
	if message == "" {
		message = match.GrammarID
	}
	if match.Truncated {
		message += " (truncated form)"
	}

	result := Result{
		RuleID: match.GrammarID,
		Level:  "note",
		Message: Message{
			Text: message,
		},
		Locations: []Location{
			{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{
						URI: uri,
					},
					Region: region,
				},
			},
		},
	}

	r.Runs[0].Results = append(r.Runs[0].Results, result)
}

// ToJSON serializes the report with indentation.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI form: absolute paths get
// a file:// scheme, relative paths stay as-is.
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}
