// Package lint provides static analysis for filter rule sets. It catches
// dead rules, conflicting rules, and prefixes that can never match, with
// multiple output formats (table, JSON).
package lint

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/stacksift/internal/trace"
)

// Severity ranks the impact of a finding.
type Severity int

const (
	// SeverityInfo is purely informational.
	SeverityInfo Severity = iota
	// SeverityLow indicates a minor concern.
	SeverityLow
	// SeverityMedium indicates a moderate concern.
	SeverityMedium
	// SeverityHigh indicates a serious issue.
	SeverityHigh
	// SeverityCritical indicates a rule set that does not do what it says.
	SeverityCritical
)

// String returns the lowercase label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseSeverity parses a severity string (case-insensitive).
// Returns an error for unrecognised values.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	case "info":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q, valid values: critical, high, medium, low, info", s)
	}
}

// Finding represents a single lint result.
type Finding struct {
	RuleID      string   `json:"ruleId"`
	Severity    Severity `json:"severity"`
	Prefix      string   `json:"prefix"`
	Message     string   `json:"message"`
	Remediation string   `json:"remediation"`
}

// Check is the interface every lint rule must implement.
type Check interface {
	// ID returns the unique check identifier (e.g. "LINT-001").
	ID() string
	// Run evaluates the rule set and returns any findings.
	Run(ctx context.Context, rs *trace.RuleSet) []Finding
}

// Result aggregates findings from all checks.
type Result struct {
	Findings []Finding      `json:"findings"`
	Summary  map[string]int `json:"summary"`
}

// Passed returns true when no finding meets or exceeds the threshold severity.
func (r *Result) Passed(threshold Severity) bool {
	for _, f := range r.Findings {
		if f.Severity >= threshold {
			return false
		}
	}

	return true
}

// Linter orchestrates a set of checks against a rule set.
type Linter struct {
	checks []Check
}

// New creates a Linter with the given checks.
func New(checks ...Check) *Linter {
	return &Linter{checks: checks}
}

// Run executes every registered check and returns the result.
func (l *Linter) Run(ctx context.Context, rs *trace.RuleSet) *Result {
	var all []Finding

	for _, chk := range l.checks {
		all = append(all, chk.Run(ctx, rs)...)
	}

	// Sort: severity descending, then check ID ascending.
	sort.Slice(all, func(i, j int) bool {
		if all[i].Severity != all[j].Severity {
			return all[i].Severity > all[j].Severity
		}

		return all[i].RuleID < all[j].RuleID
	})

	summary := make(map[string]int)
	for _, f := range all {
		summary[f.Severity.String()]++
	}

	return &Result{Findings: all, Summary: summary}
}

// DefaultChecks returns all built-in checks.
func DefaultChecks() []Check {
	return []Check{
		&ConflictingRuleCheck{},
		&ShadowedRuleCheck{},
		&RedundantRuleCheck{},
		&WhitespacePrefixCheck{},
		&EmptyRuleSetCheck{},
	}
}
