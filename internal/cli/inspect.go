package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/stacksift/internal/trace"
)

func newInspectCommand() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "inspect [dump-file]",
		Short: "Show the per-chunk verdicts without rewriting the dump",
		Long: `Inspect reads a crash dump and prints a table with one row per
goroutine chunk: its header, the module line the rules match against, the
keep/drop verdict, and the rule that decided it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := processDump(cmd, argFile(args), opts)
			if err != nil {
				return err
			}

			return trace.WriteTable(cmd.OutOrStdout(), o)
		},
	}

	registerFilterFlags(cmd, opts)

	return cmd
}
