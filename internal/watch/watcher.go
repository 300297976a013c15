package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc is called each time the watcher triggers a re-filter.
// It receives the context and returns the run result for status reporting.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the outcome of a single filter run so the watcher can
// print a status line.
type RunResult struct {
	ChunksFound int
	ChunksKept  int
	OutputPath  string
}

// Options configures the watch behaviour.
type Options struct {
	// File is the crash dump file to watch.
	File string

	// Debounce is the quiet period before triggering a re-filter.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	target, err := filepath.Abs(opts.File)
	if err != nil {
		return fmt.Errorf("resolving dump file %q: %w", opts.File, err)
	}

	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("watching dump file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory rather than the file itself. Editors often
	// save via rename-and-replace, which silently drops a watch registered
	// directly on the file.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching dump directory: %w", err)
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", target, opts.Debounce)

	// Initial run.
	doRun(sigCtx, opts, runFn, "(initial)")

	// Set up debouncer.
	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		doRun(sigCtx, opts, runFn, path)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, target) {
				continue
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single filter run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d chunks, %d kept)\n",
		now, trigger, result.ChunksFound, result.ChunksKept)

	if result.OutputPath != "" {
		fmt.Fprintf(opts.Out, "  wrote %s\n", result.OutputPath)
	}
}

// isRelevant filters out events that do not mutate the watched dump file.
func isRelevant(event fsnotify.Event, target string) bool {
	if event.Op == 0 {
		return false
	}

	// Only care about write, create, remove, rename.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	return event.Name == target
}
