package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stacksift/internal/config"
	"github.com/hupe1980/stacksift/internal/docs"
	"github.com/hupe1980/stacksift/internal/trace"
)

type docsOptions struct {
	filterOptions

	format         string
	title          string
	includeExample bool
	outputFile     string
}

func newDocsCommand() *cobra.Command {
	opts := &docsOptions{}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate documentation for a rule set",
		Long: `Generate human-readable documentation for the effective filter rule
set: every rule in evaluation order with its prefix and action, plus
the fallback behavior for unmatched chunks.

Documents a built-in profile by default; pass --rules to document a
custom rule file instead.

Supports markdown and plain-text output formats.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocs(cmd, opts)
		},
	}

	registerFilterFlags(cmd, &opts.filterOptions)

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "markdown", "output format (markdown, text)")
	f.StringVar(&opts.title, "title", "", "override document title")
	f.BoolVar(&opts.includeExample, "include-example", true, "include an example rules file in output")
	f.StringVarP(&opts.outputFile, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func runDocs(cmd *cobra.Command, opts *docsOptions) error {
	cfg := config.FromContext(cmd.Context())

	formatter, err := docs.NewFormatter(opts.format)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	rs, err := resolveRules(cfg, &opts.filterOptions)
	if err != nil {
		return err
	}

	// Describe where the rules came from.
	profile := ""
	project := opts.project

	if opts.rules == "" {
		profile = opts.profile
		if profile == "" {
			profile = cfg.Profile
		}

		if profile == "" {
			profile = trace.ProfileDefault
		}

		if project == "" {
			project = cfg.Project
		}
	}

	model := docs.NewModel(rs, profile, project, opts.rules)
	model.Title = opts.title
	model.IncludeExample = opts.includeExample

	w := cmd.OutOrStdout()

	if opts.outputFile != "" {
		f, ferr := os.Create(opts.outputFile) //nolint:gosec // User-specified output file
		if ferr != nil {
			return &ExitError{Code: 6, Err: fmt.Errorf("creating output file: %w", ferr)}
		}

		defer f.Close() //nolint:errcheck

		w = f
	}

	if err := formatter.Format(w, model); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("formatting docs: %w", err)}
	}

	return nil
}
