package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter writes lint results to a writer.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// NewFormatter returns a formatter for the given format name.
// Supported: "table" (default), "json".
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q: use table or json", format)
	}
}

// --- Table Formatter ---

// TableFormatter writes findings as a human-readable table.
type TableFormatter struct{}

// Format writes the result as a human-readable table.
func (f *TableFormatter) Format(w io.Writer, result *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "SEVERITY\tCHECK\tPREFIX\tMESSAGE")
	_, _ = fmt.Fprintln(tw, "--------\t-----\t------\t-------")

	for _, finding := range result.Findings {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			strings.ToUpper(finding.Severity.String()),
			finding.RuleID,
			finding.Prefix,
			finding.Message,
		)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Findings: %d total", len(result.Findings))

	parts := []string{}
	for _, sev := range []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo} {
		if count, ok := result.Summary[sev.String()]; ok && count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, sev.String()))
		}
	}

	if len(parts) > 0 {
		_, _ = fmt.Fprintf(w, " (%s)", strings.Join(parts, ", "))
	}

	_, _ = fmt.Fprintln(w)

	return nil
}

// --- JSON Formatter ---

// JSONFormatter writes findings as JSON.
type JSONFormatter struct{}

// Format writes the result as JSON.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	type jsonFinding struct {
		RuleID      string `json:"ruleId"`
		Severity    string `json:"severity"`
		Prefix      string `json:"prefix"`
		Message     string `json:"message"`
		Remediation string `json:"remediation"`
	}

	type jsonResult struct {
		Findings []jsonFinding  `json:"findings"`
		Summary  map[string]int `json:"summary"`
		Total    int            `json:"total"`
	}

	findings := make([]jsonFinding, 0, len(result.Findings))
	for _, f := range result.Findings {
		findings = append(findings, jsonFinding{
			RuleID:      f.RuleID,
			Severity:    f.Severity.String(),
			Prefix:      f.Prefix,
			Message:     f.Message,
			Remediation: f.Remediation,
		})
	}

	summary := result.Summary
	if summary == nil {
		summary = make(map[string]int)
	}

	return enc.Encode(jsonResult{
		Findings: findings,
		Summary:  summary,
		Total:    len(result.Findings),
	})
}
