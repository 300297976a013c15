package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stacksift/internal/config"
	"github.com/hupe1980/stacksift/internal/trace"
)

// filterOptions are the flags shared by every command that runs the
// locate → chunk → filter pipeline.
type filterOptions struct {
	profile string
	project string
	rules   string
}

// registerFilterFlags registers the shared rule-selection flags on cmd.
func registerFilterFlags(cmd *cobra.Command, opts *filterOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.profile, "profile", "", "built-in rule profile: default, vendor-only")
	f.StringVar(&opts.project, "project", "", "module path whose frames the built-in profiles keep")
	f.StringVar(&opts.rules, "rules", "", "path to a YAML rule file (overrides --profile)")
}

// resolveRules builds the effective rule set: an explicit rule file wins,
// otherwise a built-in profile is resolved with the configuration supplying
// defaults for unset flags.
func resolveRules(cfg *config.Config, opts *filterOptions) (*trace.RuleSet, error) {
	if opts.rules != "" {
		rs, err := trace.LoadRules(opts.rules)
		if err != nil {
			return nil, &ExitError{Code: 2, Err: err}
		}

		return rs, nil
	}

	profile := opts.profile
	if profile == "" {
		profile = cfg.Profile
	}

	project := opts.project
	if project == "" {
		project = cfg.Project
	}

	rs, err := trace.ResolveProfile(profile, project)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	return rs, nil
}

// readDump reads a crash dump from path, or from the command's stdin when
// path is empty or "-".
func readDump(cmd *cobra.Command, path string) (*trace.Dump, error) {
	if path == "" || path == "-" {
		d, err := trace.Read(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading dump from stdin: %w", err)
		}

		return d, nil
	}

	f, err := os.Open(path) //nolint:gosec // path is a user-provided dump file
	if err != nil {
		return nil, fmt.Errorf("opening dump file: %w", err)
	}
	defer f.Close()

	d, err := trace.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading dump file %q: %w", path, err)
	}

	return d, nil
}

// processDump runs the full pipeline for one dump. Malformed dumps (missing
// start or end marker) are fatal with exit code 1.
func processDump(cmd *cobra.Command, path string, opts *filterOptions) (*trace.Outcome, error) {
	cfg := config.FromContext(cmd.Context())

	rs, err := resolveRules(cfg, opts)
	if err != nil {
		return nil, err
	}

	d, err := readDump(cmd, path)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: err}
	}

	o, err := trace.Process(d, rs)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: err}
	}

	return o, nil
}

// argFile returns the optional positional file argument, or "" for stdin.
func argFile(args []string) string {
	if len(args) == 0 {
		return ""
	}

	return args[0]
}
