package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_SingleEvent(t *testing.T) {
	var callCount atomic.Int32
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		callCount.Add(1)
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("dump.txt")

	// Wait for debounce to fire.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, "dump.txt", lastPath.Load())
}

func TestDebouncer_MultipleEventsCoalesced(t *testing.T) {
	var callCount atomic.Int32
	var lastPath atomic.Value

	d := NewDebouncer(100*time.Millisecond, func(path string) {
		callCount.Add(1)
		lastPath.Store(path)
	})
	defer d.Stop()

	// Fire 10 rapid events — should coalesce into 1.
	for i := 0; i < 10; i++ {
		d.Trigger("dump.txt")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, "dump.txt", lastPath.Load())
}

func TestDebouncer_LastEventWins(t *testing.T) {
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("first.txt")
	time.Sleep(10 * time.Millisecond)
	d.Trigger("second.txt")
	time.Sleep(10 * time.Millisecond)
	d.Trigger("third.txt")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "third.txt", lastPath.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func(_ string) {
		callCount.Add(1)
	})

	d.Trigger("dump.txt")
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
}

// ---------------------------------------------------------------------------
// isRelevant
// ---------------------------------------------------------------------------

func TestIsRelevant(t *testing.T) {
	target := "/watch/dump.txt"

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"target write", "/watch/dump.txt", fsnotify.Write, true},
		{"target create", "/watch/dump.txt", fsnotify.Create, true},
		{"target remove", "/watch/dump.txt", fsnotify.Remove, true},
		{"target rename", "/watch/dump.txt", fsnotify.Rename, true},
		{"other file in dir", "/watch/other.txt", fsnotify.Write, false},
		{"editor temp file", "/watch/.dump.txt.swp", fsnotify.Write, false},
		{"zero op", "/watch/dump.txt", 0, false},
		{"chmod only", "/watch/dump.txt", fsnotify.Chmod, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.path, Op: tt.op}
			assert.Equal(t, tt.want, isRelevant(event, target))
		})
	}
}

// ---------------------------------------------------------------------------
// Run (integration)
// ---------------------------------------------------------------------------

func writeDump(t *testing.T, dir string) string {
	t.Helper()

	p := filepath.Join(dir, "dump.txt")
	require.NoError(t, os.WriteFile(p, []byte("PC=0x1\nmain.main()\nfoo.go:1\nrax 0x0\n"), 0o644))

	return p
}

func TestRun_GracefulShutdown(t *testing.T) {
	dump := writeDump(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())

	var runCount atomic.Int32

	opts := DefaultOptions()
	opts.File = dump
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(_ context.Context) (*RunResult, error) {
			runCount.Add(1)
			return &RunResult{ChunksFound: 1, ChunksKept: 1}, nil
		})
	}()

	// Let initial run complete.
	time.Sleep(200 * time.Millisecond)
	assert.GreaterOrEqual(t, runCount.Load(), int32(1))

	// Cancel → should shut down gracefully.
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down in time")
	}
}

func TestRun_FileChangeTriggersRefilter(t *testing.T) {
	dump := writeDump(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runCount atomic.Int32

	opts := DefaultOptions()
	opts.File = dump
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(_ context.Context) (*RunResult, error) {
			runCount.Add(1)
			return &RunResult{ChunksFound: 1, ChunksKept: 1}, nil
		})
	}()

	// Wait for initial run.
	time.Sleep(200 * time.Millisecond)
	initialRuns := runCount.Load()

	// Modify the dump → should trigger a re-filter.
	require.NoError(t, os.WriteFile(dump, []byte("PC=0x2\nmain.main()\nbar.go:2\nrax 0x0\n"), 0o644))

	// Wait for debounce + processing.
	time.Sleep(300 * time.Millisecond)
	assert.Greater(t, runCount.Load(), initialRuns, "file change should trigger re-filter")

	cancel()
	<-done
}

func TestRun_SiblingFileChangeIgnored(t *testing.T) {
	dir := t.TempDir()
	dump := writeDump(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runCount atomic.Int32

	opts := DefaultOptions()
	opts.File = dump
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(_ context.Context) (*RunResult, error) {
			runCount.Add(1)
			return &RunResult{}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	initialRuns := runCount.Load()

	// A sibling file in the watched directory must not trigger a run.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, initialRuns, runCount.Load())

	cancel()
	<-done
}

// ---------------------------------------------------------------------------
// DefaultOptions
// ---------------------------------------------------------------------------

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 500*time.Millisecond, opts.Debounce)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.Out)
}

// ---------------------------------------------------------------------------
// Run error paths
// ---------------------------------------------------------------------------

func TestRun_MissingDumpFile(t *testing.T) {
	opts := DefaultOptions()
	opts.File = "/nonexistent/dump-12345.txt"
	opts.Out = io.Discard

	err := Run(context.Background(), opts, func(_ context.Context) (*RunResult, error) {
		return &RunResult{}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching dump file")
}

func TestRun_RunFuncError(t *testing.T) {
	dump := writeDump(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())

	opts := DefaultOptions()
	opts.File = dump
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	var callCount atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(_ context.Context) (*RunResult, error) {
			callCount.Add(1)
			return nil, fmt.Errorf("filter error")
		})
	}()

	// Initial run will produce an error, but the watcher continues.
	time.Sleep(200 * time.Millisecond)
	assert.GreaterOrEqual(t, callCount.Load(), int32(1))

	cancel()
	<-done
}
