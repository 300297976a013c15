package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stacksift/internal/config"
	"github.com/hupe1980/stacksift/internal/trace"
)

func newDiffCommand() *cobra.Command {
	opts := &filterOptions{}

	var contextLines int

	cmd := &cobra.Command{
		Use:   "diff [dump-file]",
		Short: "Show a unified diff between the raw and the filtered dump",
		Long: `Diff runs the filter pipeline and prints a unified diff between the
raw dump and the filtered result, so the dropped chunks are visible at a
glance.

Exit codes:
  0  No differences (nothing was dropped)
  1  Error
  3  Differences found`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := processDump(cmd, argFile(args), opts)
			if err != nil {
				return err
			}

			result, err := trace.Diff(o, contextLines)
			if err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("computing diff: %w", err)}
			}

			cfg := config.FromContext(cmd.Context())
			trace.WriteDiff(cmd.OutOrStdout(), result, !cfg.NoColor)

			if result.HasDifferences {
				return &ExitError{Code: 3, Err: fmt.Errorf("%d chunk(s) dropped", len(o.Filter.Dropped))}
			}

			return nil
		},
	}

	registerFilterFlags(cmd, opts)
	cmd.Flags().IntVar(&contextLines, "context", 3, "number of context lines in the diff")

	return cmd
}
