package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stacksift/internal/buildsvc"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// mixedDump has one project chunk and one third-party chunk.
const mixedDump = "fatal error: unexpected signal during runtime execution\n" +
	"PC=0x455fd3 m=0 sigcode=1\n" +
	"goroutine 1 [running]:\n" +
	"example.com/acme/app/engine.go:42\n" +
	"main.main()\n" +
	"github.com/some/dep/worker.go:9\n" +
	"rax    0x0\n" +
	"rbx    0x1\n"

// projectOnlyDump has a single project chunk, so filtering drops nothing.
const projectOnlyDump = "PC=0x455fd3 m=0 sigcode=1\n" +
	"goroutine 1 [running]:\n" +
	"example.com/acme/app/engine.go:42\n" +
	"rax    0x0\n"

func writeDumpFile(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	return p
}

// ---------------------------------------------------------------------------
// filter
// ---------------------------------------------------------------------------

func TestFilter_FromFile(t *testing.T) {
	p := writeDumpFile(t, mixedDump)

	stdout, _, err := executeCommand("filter", "--project", "example.com/acme/app", p)
	require.NoError(t, err)

	assert.Contains(t, stdout, "chunks found: 2")
	assert.Contains(t, stdout, "chunks kept: 1")
	assert.Contains(t, stdout, "example.com/acme/app/engine.go:42")
	assert.NotContains(t, stdout, "github.com/some/dep/worker.go:9")
	assert.Contains(t, stdout, "rax    0x0")
}

func TestFilter_FromStdin(t *testing.T) {
	in := bytes.NewBufferString(mixedDump)

	stdout, _, err := executeCommandWithInput(in, "filter", "--project", "example.com/acme/app")
	require.NoError(t, err)
	assert.Contains(t, stdout, "chunks kept: 1")
}

func TestFilter_DashReadsStdin(t *testing.T) {
	in := bytes.NewBufferString(mixedDump)

	stdout, _, err := executeCommandWithInput(in, "filter", "--project", "example.com/acme/app", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "chunks found: 2")
}

func TestFilter_OutputFile(t *testing.T) {
	p := writeDumpFile(t, mixedDump)
	out := filepath.Join(t.TempDir(), "report.txt")

	_, _, err := executeCommand("filter", "--project", "example.com/acme/app", "-o", out, p)
	require.NoError(t, err)

	data, err := os.ReadFile(out) //nolint:gosec // test
	require.NoError(t, err)
	assert.Contains(t, string(data), "chunks kept: 1")
}

func TestFilter_MissingStartMarker(t *testing.T) {
	p := writeDumpFile(t, "goroutine 1 [running]:\nfoo.go:1\nrax 0x0\n")

	_, _, err := executeCommand("filter", p)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "start marker")
}

func TestFilter_MissingEndMarker(t *testing.T) {
	p := writeDumpFile(t, "PC=0x1\ngoroutine 1 [running]:\nfoo.go:1\n")

	_, _, err := executeCommand("filter", p)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "end marker")
}

func TestFilter_MissingDumpFile(t *testing.T) {
	_, _, err := executeCommand("filter", "/nonexistent/dump-12345.txt")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "opening dump file")
}

func TestFilter_RuleFile(t *testing.T) {
	p := writeDumpFile(t, mixedDump)

	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(
		"rules:\n"+
			"  - prefix: github.com/some/dep\n"+
			"    action: drop\n",
	), 0o644))

	stdout, _, err := executeCommand("filter", "--rules", rules, p)
	require.NoError(t, err)
	assert.Contains(t, stdout, "chunks kept: 1")
	assert.Contains(t, stdout, "example.com/acme/app/engine.go:42")
}

func TestFilter_MissingRuleFile(t *testing.T) {
	p := writeDumpFile(t, mixedDump)

	_, _, err := executeCommand("filter", "--rules", "/nonexistent/rules.yaml", p)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

// ---------------------------------------------------------------------------
// inspect
// ---------------------------------------------------------------------------

func TestInspect_Table(t *testing.T) {
	p := writeDumpFile(t, mixedDump)

	stdout, _, err := executeCommand("inspect", "--project", "example.com/acme/app", p)
	require.NoError(t, err)

	assert.Contains(t, stdout, "goroutine 1 [running]:")
	assert.Contains(t, stdout, "main.main()")
	assert.Contains(t, stdout, "keep")
	assert.Contains(t, stdout, "drop")
	assert.Contains(t, stdout, "chunks: 2 found, 1 kept, 1 dropped")
}

// ---------------------------------------------------------------------------
// diff
// ---------------------------------------------------------------------------

func TestDiff_DroppedChunks(t *testing.T) {
	p := writeDumpFile(t, mixedDump)

	stdout, _, err := executeCommand("diff", "--no-color", "--project", "example.com/acme/app", p)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)

	assert.Contains(t, stdout, "-main.main()")
	assert.Contains(t, stdout, "-github.com/some/dep/worker.go:9")
}

func TestDiff_NoDifferences(t *testing.T) {
	p := writeDumpFile(t, projectOnlyDump)

	_, _, err := executeCommand("diff", "--project", "example.com/acme/app", p)
	require.NoError(t, err)
}

// ---------------------------------------------------------------------------
// lint
// ---------------------------------------------------------------------------

func TestLint_CleanProfile(t *testing.T) {
	stdout, _, err := executeCommand("lint", "--project", "example.com/acme/app")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Findings: 0 total")
}

func TestLint_FailOnThreshold(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(p, []byte(
		"rules:\n"+
			"  - prefix: github.com/\n"+
			"    action: drop\n"+
			"  - prefix: github.com/acme/app/\n"+
			"    action: keep\n",
	), 0o644))

	stdout, _, err := executeCommand("lint", "--rules", p)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.Code)
	assert.Contains(t, stdout, "LINT-002")
}

func TestLint_JSONFormat(t *testing.T) {
	stdout, _, err := executeCommand("lint", "--format", "json", "--project", "example.com/acme/app")
	require.NoError(t, err)

	assert.Contains(t, stdout, `"total": 0`)
}

func TestLint_InvalidFormat(t *testing.T) {
	_, _, err := executeCommand("lint", "--format", "sarif")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestLint_InvalidFailOn(t *testing.T) {
	_, _, err := executeCommand("lint", "--fail-on", "severe")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "unknown severity")
}

// ---------------------------------------------------------------------------
// docs
// ---------------------------------------------------------------------------

func TestDocs_Markdown(t *testing.T) {
	stdout, _, err := executeCommand("docs", "--project", "example.com/acme/app")
	require.NoError(t, err)

	assert.Contains(t, stdout, "# Filter Rules (default profile)")
	assert.Contains(t, stdout, "| 1 | `example.com/acme/app/vendor/` | drop |")
	assert.Contains(t, stdout, "## Example Rules File")
}

func TestDocs_TextFromRuleFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(p, []byte(
		"rules:\n"+
			"  - prefix: github.com/some/dep\n"+
			"    action: drop\n",
	), 0o644))

	stdout, _, err := executeCommand("docs", "--format", "text", "--rules", p)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Source:  "+p)
	assert.Contains(t, stdout, "github.com/some/dep")
}

func TestDocs_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rules.md")

	_, _, err := executeCommand("docs", "--project", "example.com/acme/app", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Filter Rules")
}

func TestDocs_InvalidFormat(t *testing.T) {
	_, _, err := executeCommand("docs", "--format", "pdf")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

// ---------------------------------------------------------------------------
// watch
// ---------------------------------------------------------------------------

func TestWatch_RequiresOutput(t *testing.T) {
	p := writeDumpFile(t, mixedDump)

	_, _, err := executeCommand("watch", p)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "--output")
}

func TestWatch_RequiresArg(t *testing.T) {
	_, _, err := executeCommand("watch")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// build
// ---------------------------------------------------------------------------

func TestBuild_RequiresAPIURL(t *testing.T) {
	t.Setenv("STACKSIFT_API_KEY", "k")

	_, _, err := executeCommand("build", "mypackage")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "build service URL")
}

func TestBuild_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req buildsvc.SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mypackage", req.Package)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(buildsvc.Build{ID: 12, State: buildsvc.StatePending})
	}))
	defer srv.Close()

	stdout, _, err := executeCommand("build",
		"--api-url", srv.URL, "--api-key", "test-key", "mypackage")
	require.NoError(t, err)
	assert.Contains(t, stdout, "build 12 submitted (pending)")
}

func TestBuild_WaitSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(buildsvc.Build{ID: 5, State: buildsvc.StateRunning})
			return
		}

		_ = json.NewEncoder(w).Encode(buildsvc.Build{ID: 5, State: buildsvc.StateSucceeded})
	}))
	defer srv.Close()

	stdout, _, err := executeCommand("build",
		"--api-url", srv.URL, "--api-key", "test-key",
		"--wait", "--interval", "1ms", "mypackage")
	require.NoError(t, err)
	assert.Contains(t, stdout, "build 5 finished: succeeded")
}

func TestBuild_WaitFailedBuild(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(buildsvc.Build{ID: 6, State: buildsvc.StateRunning})
			return
		}

		_ = json.NewEncoder(w).Encode(buildsvc.Build{ID: 6, State: buildsvc.StateFailed})
	}))
	defer srv.Close()

	_, _, err := executeCommand("build",
		"--api-url", srv.URL, "--api-key", "test-key",
		"--wait", "--interval", "1ms", "mypackage")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "state failed")
}

// ---------------------------------------------------------------------------
// version / completion
// ---------------------------------------------------------------------------

func TestVersion_Text(t *testing.T) {
	stdout, _, err := executeCommand("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stacksift")
}

func TestVersion_JSON(t *testing.T) {
	stdout, _, err := executeCommand("version", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"version"`)
}

func TestCompletion_Bash(t *testing.T) {
	stdout, _, err := executeCommand("completion", "bash")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestCompletion_InvalidShell(t *testing.T) {
	_, _, err := executeCommand("completion", "tcsh")
	require.Error(t, err)
}
