package lint

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/hupe1980/stacksift/internal/trace"
)

// ConflictingRuleCheck flags rules that share a prefix but disagree on the
// action. Only the first one ever fires, so the rule set silently does not
// do what half of it says.
type ConflictingRuleCheck struct{}

// ID returns the check identifier.
func (c *ConflictingRuleCheck) ID() string { return "LINT-001" }

// Run evaluates the rule set.
func (c *ConflictingRuleCheck) Run(_ context.Context, rs *trace.RuleSet) []Finding {
	var findings []Finding

	rules := rs.Rules()
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			if rules[i].Prefix == rules[j].Prefix && rules[i].Action != rules[j].Action {
				findings = append(findings, Finding{
					RuleID:      c.ID(),
					Severity:    SeverityCritical,
					Prefix:      rules[j].Prefix,
					Message:     fmt.Sprintf("rule %d (%s) conflicts with rule %d (%s) on the same prefix", j+1, rules[j].Action, i+1, rules[i].Action),
					Remediation: "remove one of the rules; only the first ever fires",
				})
			}
		}
	}

	return findings
}

// ShadowedRuleCheck flags rules that can never fire because an earlier
// rule's prefix already covers theirs.
type ShadowedRuleCheck struct{}

// ID returns the check identifier.
func (c *ShadowedRuleCheck) ID() string { return "LINT-002" }

// Run evaluates the rule set.
func (c *ShadowedRuleCheck) Run(_ context.Context, rs *trace.RuleSet) []Finding {
	var findings []Finding

	rules := rs.Rules()
	for j := 1; j < len(rules); j++ {
		for i := 0; i < j; i++ {
			// A later rule is dead when an earlier, strictly shorter prefix
			// matches everything the later prefix would match.
			if rules[i].Prefix != rules[j].Prefix && strings.HasPrefix(rules[j].Prefix, rules[i].Prefix) {
				findings = append(findings, Finding{
					RuleID:      c.ID(),
					Severity:    SeverityHigh,
					Prefix:      rules[j].Prefix,
					Message:     fmt.Sprintf("rule %d is unreachable: rule %d (prefix %q) matches first", j+1, i+1, rules[i].Prefix),
					Remediation: "move the more specific rule before the broader one, or delete it",
				})

				break
			}
		}
	}

	return findings
}

// RedundantRuleCheck flags exact duplicates with the same action. Harmless,
// but usually a copy-paste leftover.
type RedundantRuleCheck struct{}

// ID returns the check identifier.
func (c *RedundantRuleCheck) ID() string { return "LINT-003" }

// Run evaluates the rule set.
func (c *RedundantRuleCheck) Run(_ context.Context, rs *trace.RuleSet) []Finding {
	var findings []Finding

	rules := rs.Rules()
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			if rules[i].Prefix == rules[j].Prefix && rules[i].Action == rules[j].Action {
				findings = append(findings, Finding{
					RuleID:      c.ID(),
					Severity:    SeverityLow,
					Prefix:      rules[j].Prefix,
					Message:     fmt.Sprintf("rule %d duplicates rule %d", j+1, i+1),
					Remediation: "delete the duplicate rule",
				})
			}
		}
	}

	return findings
}

// WhitespacePrefixCheck flags prefixes that start with whitespace. Module
// lines are whitespace-trimmed before matching, so such a prefix can never
// match anything.
type WhitespacePrefixCheck struct{}

// ID returns the check identifier.
func (c *WhitespacePrefixCheck) ID() string { return "LINT-004" }

// Run evaluates the rule set.
func (c *WhitespacePrefixCheck) Run(_ context.Context, rs *trace.RuleSet) []Finding {
	var findings []Finding

	for i, r := range rs.Rules() {
		if len(r.Prefix) > 0 && unicode.IsSpace(rune(r.Prefix[0])) {
			findings = append(findings, Finding{
				RuleID:      c.ID(),
				Severity:    SeverityMedium,
				Prefix:      r.Prefix,
				Message:     fmt.Sprintf("rule %d has a leading-whitespace prefix and can never match", i+1),
				Remediation: "module lines are trimmed before matching; remove the leading whitespace",
			})
		}
	}

	return findings
}

// EmptyRuleSetCheck flags a rule set with no rules: every chunk is kept, so
// filtering is a no-op.
type EmptyRuleSetCheck struct{}

// ID returns the check identifier.
func (c *EmptyRuleSetCheck) ID() string { return "LINT-005" }

// Run evaluates the rule set.
func (c *EmptyRuleSetCheck) Run(_ context.Context, rs *trace.RuleSet) []Finding {
	if len(rs.Rules()) > 0 {
		return nil
	}

	return []Finding{{
		RuleID:      c.ID(),
		Severity:    SeverityInfo,
		Message:     "rule set is empty; every chunk is kept",
		Remediation: "add at least one rule, or skip filtering entirely",
	}}
}
