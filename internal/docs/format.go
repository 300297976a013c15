package docs

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter renders a DocModel to a writer.
type Formatter interface {
	Format(w io.Writer, model *DocModel) error
}

// NewFormatter returns a formatter for the given format name.
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return &MarkdownFormatter{}, nil
	case "", "text", "txt":
		return &TextFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported docs format: %s", format)
	}
}

func title(model *DocModel) string {
	if model.Title != "" {
		return model.Title
	}

	if model.Profile != "" {
		return fmt.Sprintf("Filter Rules (%s profile)", model.Profile)
	}

	return "Filter Rules"
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

// MarkdownFormatter renders documentation as Markdown.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, model *DocModel) error {
	fmt.Fprintf(w, "# %s\n\n", title(model))

	if model.Project != "" {
		fmt.Fprintf(w, "**Project:** `%s`  \n", model.Project)
	}

	if model.Source != "" {
		fmt.Fprintf(w, "**Source:** `%s`  \n", model.Source)
	}

	fmt.Fprintln(w)

	if len(model.Rules) > 0 {
		fmt.Fprintf(w, "## Rules\n\n")
		fmt.Fprintln(w, "Rules are evaluated in order against the trimmed module line of each chunk; the first match decides.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| # | Prefix | Action |")
		fmt.Fprintln(w, "|---|--------|--------|")

		for _, r := range model.Rules {
			fmt.Fprintf(w, "| %d | `%s` | %s |\n", r.Position, r.Prefix, r.Action)
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Chunks matching no rule are kept.")
		fmt.Fprintln(w)
	}

	if model.IncludeExample {
		example := GenerateExampleYAML(model)
		fmt.Fprintf(w, "## Example Rules File\n\n```yaml\n%s```\n", example)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Plain text
// ---------------------------------------------------------------------------

// TextFormatter renders documentation as plain text for terminal use.
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, model *DocModel) error {
	fmt.Fprintln(w, title(model))
	fmt.Fprintln(w, strings.Repeat("=", len(title(model))))
	fmt.Fprintln(w)

	if model.Project != "" {
		fmt.Fprintf(w, "Project: %s\n", model.Project)
	}

	if model.Source != "" {
		fmt.Fprintf(w, "Source:  %s\n", model.Source)
	}

	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "#\tPREFIX\tACTION")

	for _, r := range model.Rules {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Position, r.Prefix, r.Action)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rules are evaluated in order; the first match decides. Chunks matching no rule are kept.")

	if model.IncludeExample {
		fmt.Fprintf(w, "\nExample rules file:\n\n%s", GenerateExampleYAML(model))
	}

	return nil
}
