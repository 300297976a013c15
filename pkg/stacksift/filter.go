// Package stacksift provides a public Go API for filtering Go crash dump
// stack traces.
//
// This package exposes the filter pipeline as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	f, _ := os.Open("dump.txt")
//	result, err := stacksift.Filter(ctx, f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report)
//
// With options:
//
//	result, err := stacksift.Filter(ctx, f,
//	    stacksift.WithProject("example.com/acme/app"),
//	    stacksift.WithProfile("vendor-only"),
//	)
package stacksift

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/stacksift/internal/trace"
)

// Errors reported for malformed dumps.
var (
	// ErrNoStartMarker is returned when the dump has no "PC=" line.
	ErrNoStartMarker = trace.ErrNoStartMarker

	// ErrNoEndMarker is returned when the goroutine section is not closed
	// by a register dump.
	ErrNoEndMarker = trace.ErrNoEndMarker
)

// Option configures the filter pipeline.
// Use the With* functions to create Options.
type Option func(*options)

// options holds the internal configuration for the filter pipeline.
type options struct {
	profile   string
	project   string
	rulesFile string
}

// WithProfile selects a built-in rule profile ("default" or "vendor-only").
func WithProfile(p string) Option { return func(o *options) { o.profile = p } }

// WithProject sets the module path whose frames the built-in profiles keep.
func WithProject(p string) Option { return func(o *options) { o.project = p } }

// WithRulesFile loads the rule set from a YAML file instead of a profile.
func WithRulesFile(path string) Option { return func(o *options) { o.rulesFile = path } }

// Chunk describes one goroutine chunk and its verdict.
type Chunk struct {
	// Header is the first line of the chunk.
	Header string

	// Module is the trimmed second line the rules matched against.
	Module string

	// Kept reports whether the chunk survived filtering.
	Kept bool

	// Reason names the rule (or fallback) that decided the verdict.
	Reason string
}

// Result holds the output of a successful filter run.
type Result struct {
	// Report is the full report text: counters, kept chunks, and the
	// trailing register dump.
	Report string

	// Filtered is the dump with dropped chunks removed, byte-exact
	// outside the goroutine section.
	Filtered string

	// Chunks holds the per-chunk verdicts in dump order.
	Chunks []Chunk

	// ChunksFound is the total number of goroutine chunks.
	ChunksFound int

	// ChunksKept is the number of chunks that survived filtering.
	ChunksKept int

	// StartLine is the 1-based line number of the "PC=" start marker.
	StartLine int

	// EndLine is the 1-based line number of the register end marker.
	EndLine int
}

// Filter reads a Go crash dump from r and applies the configured rule set.
//
// Pass no options to use the default profile with the default project:
//
//	result, err := stacksift.Filter(ctx, r)
func Filter(ctx context.Context, r io.Reader, opts ...Option) (*Result, error) {
	if r == nil {
		return nil, errors.New("reader must not be nil")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	rs, err := resolveRules(o)
	if err != nil {
		return nil, err
	}

	d, err := trace.Read(r)
	if err != nil {
		return nil, err
	}

	outcome, err := trace.Process(d, rs)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(outcome.Chunks))

	for _, c := range outcome.Chunks {
		kept, reason := rs.Verdict(c)
		chunks = append(chunks, Chunk{
			Header: c.Header(),
			Module: c.Module(),
			Kept:   kept,
			Reason: reason,
		})
	}

	return &Result{
		Report:      trace.ReportString(outcome),
		Filtered:    outcome.FilteredText(),
		Chunks:      chunks,
		ChunksFound: len(outcome.Chunks),
		ChunksKept:  len(outcome.Filter.Kept),
		StartLine:   outcome.Start + 1,
		EndLine:     outcome.End + 1,
	}, nil
}

// resolveRules builds the rule set from the options.
func resolveRules(o *options) (*trace.RuleSet, error) {
	if o.rulesFile != "" {
		return trace.LoadRules(o.rulesFile)
	}

	return trace.ResolveProfile(o.profile, o.project)
}
