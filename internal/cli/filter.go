package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stacksift/internal/logging"
	"github.com/hupe1980/stacksift/internal/output"
	"github.com/hupe1980/stacksift/internal/trace"
)

func newFilterCommand() *cobra.Command {
	opts := &filterOptions{}

	var outPath string

	cmd := &cobra.Command{
		Use:   "filter [dump-file]",
		Short: "Filter a crash dump and print the report",
		Long: `Filter reads a Go crash dump from a file (or stdin when no file is
given, or when the file is "-"), splits the goroutine section into chunks,
applies the active rule set, and prints a report with the kept chunks and
the trailing register dump.

Exit codes:
  0  Success
  1  Malformed dump (missing "PC=" start marker or register end marker)
  2  Invalid arguments`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, argFile(args), outPath, opts)
		},
	}

	registerFilterFlags(cmd, opts)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file path (default: stdout)")

	return cmd
}

func runFilter(cmd *cobra.Command, path, outPath string, opts *filterOptions) error {
	logger := logging.FromContext(cmd.Context())

	o, err := processDump(cmd, path, opts)
	if err != nil {
		return err
	}

	logger.Info("dump filtered",
		slog.Int("chunksFound", len(o.Chunks)),
		slog.Int("chunksKept", len(o.Filter.Kept)),
		slog.Int("chunksDropped", len(o.Filter.Dropped)),
	)

	if outPath != "" {
		w := output.NewFileWriter(outPath, output.WithLogger(logger))
		if err := w.Write([]byte(trace.ReportString(o))); err != nil {
			return &ExitError{Code: 6, Err: fmt.Errorf("writing output: %w", err)}
		}

		logger.Info("report written", slog.String("path", outPath))

		return nil
	}

	if err := trace.WriteReport(cmd.OutOrStdout(), o); err != nil {
		return &ExitError{Code: 6, Err: fmt.Errorf("writing output: %w", err)}
	}

	return nil
}
