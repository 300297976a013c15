package trace

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultProject is the module prefix treated as project-owned when no
// --project override is given.
const DefaultProject = "github.com/hupe1980/stacksift"

// Action decides what happens to a chunk whose module line matches a rule.
type Action string

// Supported rule actions.
const (
	ActionKeep Action = "keep"
	ActionDrop Action = "drop"
)

// Rule is one prefix rule over a chunk's module-identifier line.
type Rule struct {
	// Prefix is matched against the whitespace-trimmed module line.
	Prefix string `yaml:"prefix"`

	// Action is applied when the prefix matches.
	Action Action `yaml:"action"`
}

// RuleSet is an ordered list of prefix rules. The first matching rule
// decides a chunk's fate; chunks matching no rule are kept. Order matters:
// the vendor drop rule precedes the project keep rule, which in turn
// precedes the generic third-party drops, so project-owned frames survive
// the broad rules while vendored code does not.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet creates a rule set that evaluates rules in the given order.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	for _, r := range rules {
		if r.Prefix == "" {
			return nil, fmt.Errorf("rule with empty prefix")
		}

		if r.Action != ActionKeep && r.Action != ActionDrop {
			return nil, fmt.Errorf("invalid rule action %q: must be keep or drop", r.Action)
		}
	}

	return &RuleSet{rules: rules}, nil
}

// Rules returns the rules in evaluation order.
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

// Verdict decides whether a chunk is kept. Chunks with fewer than 2 lines
// are non-conforming and always dropped. The returned reason names the
// deciding rule for operator-facing summaries.
func (rs *RuleSet) Verdict(c *Chunk) (bool, string) {
	if c.LineCount() < 2 {
		return false, "chunk has fewer than 2 lines"
	}

	module := c.Module()
	for _, r := range rs.rules {
		if strings.HasPrefix(module, r.Prefix) {
			return r.Action == ActionKeep, fmt.Sprintf("%s prefix %s", r.Action, r.Prefix)
		}
	}

	return true, "no rule matched"
}

// ---------------------------------------------------------------------------
// Built-in profiles
// ---------------------------------------------------------------------------

// Profile names selectable via --profile.
const (
	ProfileDefault    = "default"
	ProfileVendorOnly = "vendor-only"
)

// ProfileNames returns the built-in profile names.
func ProfileNames() []string {
	return []string{ProfileDefault, ProfileVendorOnly}
}

// ResolveProfile returns the rule set for a built-in profile, parameterized
// by the project-owned module prefix.
func ResolveProfile(name, project string) (*RuleSet, error) {
	if project == "" {
		project = DefaultProject
	}

	switch name {
	case "", ProfileDefault:
		return DefaultRules(project), nil
	case ProfileVendorOnly:
		return VendorOnlyRules(project), nil
	}

	return nil, fmt.Errorf("unknown profile %q: must be one of default, vendor-only", name)
}

// DefaultRules is the broad policy: drop vendored code, unrelated
// third-party modules, and runtime-internal frames, but always keep frames
// from the project's own module.
func DefaultRules(project string) *RuleSet {
	return &RuleSet{rules: []Rule{
		{Prefix: project + "/vendor/", Action: ActionDrop},
		{Prefix: project + "/", Action: ActionKeep},
		{Prefix: "github.com/", Action: ActionDrop},
		{Prefix: "golang.org/", Action: ActionDrop},
		{Prefix: "gopkg.in/", Action: ActionDrop},
		{Prefix: "runtime/", Action: ActionDrop},
		{Prefix: "internal/", Action: ActionDrop},
		{Prefix: "testing/", Action: ActionDrop},
	}}
}

// VendorOnlyRules is the narrow policy: drop only vendored code.
func VendorOnlyRules(project string) *RuleSet {
	return &RuleSet{rules: []Rule{
		{Prefix: project + "/vendor/", Action: ActionDrop},
	}}
}

// ---------------------------------------------------------------------------
// Custom rule files
// ---------------------------------------------------------------------------

// LoadRules reads an ordered rule list from a YAML file. The file must
// contain a top-level "rules" key:
//
//	rules:
//	  - prefix: example.com/app/vendor/
//	    action: drop
//	  - prefix: example.com/app/
//	    action: keep
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a user-provided rules file
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	return ParseRules(data)
}

// ParseRules parses a rule list from YAML bytes.
func ParseRules(data []byte) (*RuleSet, error) {
	var raw struct {
		Rules []Rule `yaml:"rules"`
	}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	if len(raw.Rules) == 0 {
		return nil, fmt.Errorf("rules file defines no rules")
	}

	return NewRuleSet(raw.Rules...)
}
