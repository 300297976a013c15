// Package docs generates human-readable documentation for filter rule
// sets. It supports Markdown and plain-text output, with an optional
// example rules-file section.
package docs

import (
	"github.com/hupe1980/stacksift/internal/trace"
)

// RuleDoc describes a single rule in evaluation order.
type RuleDoc struct {
	// Position is the 1-based position in the rule set.
	Position int
	// Prefix is matched against the trimmed module line.
	Prefix string
	// Action is applied on a match.
	Action string
}

// DocModel is the structured data model for documentation generation.
type DocModel struct {
	// Title overrides the document title.
	Title string
	// Profile is the built-in profile name, if the rules came from one.
	Profile string
	// Project is the module prefix treated as project-owned.
	Project string
	// Source is the rules file path, if the rules came from a file.
	Source string
	// Rules are the rules in evaluation order.
	Rules []RuleDoc
	// IncludeExample controls whether an example rules file is appended.
	IncludeExample bool
}

// NewModel builds a DocModel from a rule set. Profile and source describe
// where the rules came from; either may be empty.
func NewModel(rs *trace.RuleSet, profile, project, source string) *DocModel {
	model := &DocModel{
		Profile: profile,
		Project: project,
		Source:  source,
	}

	for i, r := range rs.Rules() {
		model.Rules = append(model.Rules, RuleDoc{
			Position: i + 1,
			Prefix:   r.Prefix,
			Action:   string(r.Action),
		})
	}

	return model
}

// GenerateExampleYAML creates an example rules file from the model.
func GenerateExampleYAML(model *DocModel) string {
	rules := model.Rules
	if len(rules) == 0 {
		rules = []RuleDoc{
			{Prefix: "example.com/app/vendor/", Action: "drop"},
			{Prefix: "example.com/app/", Action: "keep"},
		}
	}

	out := "rules:\n"
	for _, r := range rules {
		out += "  - prefix: " + r.Prefix + "\n"
		out += "    action: " + r.Action + "\n"
	}

	return out
}
