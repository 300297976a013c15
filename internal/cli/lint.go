package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stacksift/internal/config"
	"github.com/hupe1980/stacksift/internal/lint"
	"github.com/hupe1980/stacksift/internal/logging"
)

type lintOptions struct {
	filterOptions

	format string
	failOn string
}

func newLintCommand() *cobra.Command {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check a rule set for dead, conflicting, or unmatchable rules",
		Long: `Lint the effective filter rule set for mistakes that silently change
what gets kept or dropped.

Built-in checks (LINT-001 through LINT-005) flag conflicting rules on
the same prefix, rules shadowed by an earlier broader prefix, exact
duplicates, prefixes that can never match, and empty rule sets.

Use --fail-on to set a severity threshold: the command exits with
code 4 if any finding meets or exceeds the threshold.

Output formats: table (default), json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLint(cmd, opts)
		},
	}

	registerFilterFlags(cmd, &opts.filterOptions)

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "table", "output format: table, json")
	f.StringVar(&opts.failOn, "fail-on", "high", "fail with exit code 4 if findings >= severity (critical, high, medium, low, info)")

	return cmd
}

func runLint(cmd *cobra.Command, opts *lintOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	// Fail fast on bad format or threshold.
	formatter, err := lint.NewFormatter(opts.format)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	threshold, err := lint.ParseSeverity(opts.failOn)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	rs, err := resolveRules(cfg, &opts.filterOptions)
	if err != nil {
		return err
	}

	result := lint.New(lint.DefaultChecks()...).Run(ctx, rs)

	logger.Info("lint finished",
		slog.Int("rules", len(rs.Rules())),
		slog.Int("findings", len(result.Findings)),
	)

	if err := formatter.Format(cmd.OutOrStdout(), result); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("formatting results: %w", err)}
	}

	if !result.Passed(threshold) {
		return &ExitError{
			Code: 4,
			Err:  fmt.Errorf("lint failed: findings at or above %s severity", threshold.String()),
		}
	}

	return nil
}
