package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stacksift/internal/buildsvc"
	"github.com/hupe1980/stacksift/internal/config"
	"github.com/hupe1980/stacksift/internal/logging"
)

type buildOptions struct {
	project    string
	chroots    []string
	apiURL     string
	apiKey     string
	apiKeyFile string
	wait       bool
	interval   time.Duration
	timeout    time.Duration
}

func newBuildCommand() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build <package>",
		Short: "Submit a package build to the build service",
		Long: `Build submits a source package to the package build service and
optionally waits for the build to finish.

The API key is resolved in order: --api-key, the STACKSIFT_API_KEY
environment variable, then the key file (--api-key-file, defaulting to
~/.config/stacksift/api-key).

Exit codes:
  0  Build submitted (and succeeded, with --wait)
  1  Submission failed, or the build failed with --wait
  2  Invalid arguments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.project, "project", "", "build-service project to build into")
	f.StringSliceVar(&opts.chroots, "chroot", nil, "target build environments (can specify multiple)")
	f.StringVar(&opts.apiURL, "api-url", "", "build service base URL")
	f.StringVar(&opts.apiKey, "api-key", "", "build service API key")
	f.StringVar(&opts.apiKeyFile, "api-key-file", "", "file containing the API key")
	f.BoolVar(&opts.wait, "wait", false, "wait for the build to reach a terminal state")
	f.DurationVar(&opts.interval, "interval", 10*time.Second, "poll interval with --wait")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Minute, "overall timeout with --wait")

	return cmd
}

func runBuild(cmd *cobra.Command, pkg string, opts *buildOptions) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg := config.FromContext(ctx)

	apiURL := opts.apiURL
	if apiURL == "" {
		apiURL = cfg.APIURL
	}

	if apiURL == "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("build service URL is required: set --api-url or STACKSIFT_API_URL")}
	}

	key, err := buildsvc.ResolveAPIKey(opts.apiKey, opts.apiKeyFile)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	client, err := buildsvc.NewClient(apiURL, buildsvc.WithAPIKey(key))
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	build, err := client.Submit(ctx, buildsvc.SubmitRequest{
		Project: opts.project,
		Package: pkg,
		Chroots: opts.chroots,
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	logger.Info("build submitted",
		slog.Int64("id", build.ID),
		slog.String("state", string(build.State)),
	)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "build %d submitted (%s)\n", build.ID, build.State)

	if !opts.wait {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	final, err := client.Wait(waitCtx, build.ID, opts.interval)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "build %d finished: %s\n", final.ID, final.State)

	if final.State != buildsvc.StateSucceeded {
		return &ExitError{Code: 1, Err: fmt.Errorf("build %d ended in state %s", final.ID, final.State)}
	}

	return nil
}
