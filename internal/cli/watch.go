package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stacksift/internal/logging"
	"github.com/hupe1980/stacksift/internal/output"
	"github.com/hupe1980/stacksift/internal/trace"
	"github.com/hupe1980/stacksift/internal/watch"
)

func newWatchCommand() *cobra.Command {
	opts := &filterOptions{}

	var (
		outPath  string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dump-file>",
		Short: "Re-filter a crash dump whenever it changes",
		Long: `Watch monitors a crash dump file and re-runs the filter pipeline on
every change, writing the report to the output file. Useful while iterating
on rule files against a captured dump.

Press Ctrl-C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return &ExitError{Code: 2, Err: fmt.Errorf("--output flag is required in watch mode")}
			}

			return runWatch(cmd, args[0], outPath, debounce, opts)
		},
	}

	registerFilterFlags(cmd, opts)

	f := cmd.Flags()
	f.StringVarP(&outPath, "output", "o", "", "output file path (required)")
	f.DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before re-filtering")

	return cmd
}

func runWatch(cmd *cobra.Command, path, outPath string, debounce time.Duration, opts *filterOptions) error {
	logger := logging.FromContext(cmd.Context())

	wOpts := watch.DefaultOptions()
	wOpts.File = path
	wOpts.Debounce = debounce
	wOpts.Logger = logger
	wOpts.Out = cmd.ErrOrStderr()

	runFn := func(context.Context) (*watch.RunResult, error) {
		o, err := processDump(cmd, path, opts)
		if err != nil {
			return nil, err
		}

		w := output.NewFileWriter(outPath, output.WithLogger(logger))
		if err := w.Write([]byte(trace.ReportString(o))); err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}

		return &watch.RunResult{
			ChunksFound: len(o.Chunks),
			ChunksKept:  len(o.Filter.Kept),
			OutputPath:  outPath,
		}, nil
	}

	if err := watch.Run(cmd.Context(), wOpts, runFn); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	return nil
}
