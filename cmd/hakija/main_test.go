package main_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectRoot returns the absolute path to the project root directory.
func projectRoot(tb testing.TB) string {
	tb.Helper()
	_, thisFile, _, _ := runtime.Caller(0)
	// thisFile is <repo>/cmd/hakija/main_test.go.
	return filepath.Join(filepath.Dir(thisFile), "..", "..")
}

// buildBinary compiles hakija into a temp dir and returns its path.
func buildBinary(tb testing.TB) string {
	tb.Helper()
	binPath := filepath.Join(tb.TempDir(), "hakija")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/hakija/")
	cmd.Dir = projectRoot(tb)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	require.NoError(tb, err, "go build failed: %s", string(out))
	return binPath
}

// testProject is an isolated working directory with a built binary.
type testProject struct {
	Dir        string
	BinaryPath string
	t          *testing.T
}

func newTestProject(t *testing.T) *testProject {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary test in short mode")
	}
	return &testProject{Dir: t.TempDir(), BinaryPath: buildBinary(t), t: t}
}

func (tp *testProject) writeFile(name, content string) string {
	tp.t.Helper()
	path := filepath.Join(tp.Dir, name)
	require.NoError(tp.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run creates an exec.Cmd for hakija with colors off and JSON logs.
func (tp *testProject) run(args ...string) *exec.Cmd {
	cmd := exec.Command(tp.BinaryPath, args...)
	cmd.Dir = tp.Dir
	cmd.Env = append(os.Environ(),
		"NO_COLOR=1",
		"HAKIJA_LOG_FORMAT=json",
		"HAKIJA_TOKEN=",
	)
	return cmd
}

func (tp *testProject) runExpectSuccess(args ...string) string {
	tp.t.Helper()
	out, err := tp.run(args...).CombinedOutput()
	require.NoError(tp.t, err, "hakija %v failed:\n%s", args, string(out))
	return string(out)
}

func (tp *testProject) runExpectFailure(args ...string) (string, int) {
	tp.t.Helper()
	out, err := tp.run(args...).CombinedOutput()
	require.Error(tp.t, err, "hakija %v expected to fail but succeeded:\n%s", args, string(out))
	var exitErr *exec.ExitError
	require.True(tp.t, errors.As(err, &exitErr), "expected *exec.ExitError, got %T: %v", err, err)
	return string(out), exitErr.ExitCode()
}

func TestBinary_Help(t *testing.T) {
	tp := newTestProject(t)

	out := tp.runExpectSuccess()
	assert.Contains(t, out, "employer benefit applications")
	for _, sub := range []string{"apply", "draft", "validate", "deminimis", "config", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestBinary_Version(t *testing.T) {
	tp := newTestProject(t)

	assert.Contains(t, tp.runExpectSuccess("version"), "hakija v")

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(tp.runExpectSuccess("version", "--json")), &info))
	assert.Contains(t, info, "version")
}

func TestBinary_ConfigFromFile(t *testing.T) {
	tp := newTestProject(t)
	tp.writeFile("hakija.toml", "[backend]\nurl = \"https://api.example.test\"\ntoken = \"abcd1234\"\n")

	out := tp.runExpectSuccess("config", "debug")
	assert.Contains(t, out, `"https://api.example.test"`)
	assert.Contains(t, out, "(source: file)")

	assert.Contains(t, tp.runExpectSuccess("config", "validate"), "No issues found.")
}

func TestBinary_ValidateExitCode(t *testing.T) {
	tp := newTestProject(t)
	path := tp.writeFile("values.yaml", "companyName: Oy Testi Ab\n")

	out, code := tp.runExpectFailure("validate", path, "--step", "company")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "FAIL company")
	assert.Contains(t, out, "Error:")
}

func TestBinary_DraftShow(t *testing.T) {
	tp := newTestProject(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/applications/app-9/" {
			http.NotFound(w, r)
			return
		}
		assert.Contains(t, r.Header.Get("User-Agent"), "hakija/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "app-9", "status": "draft", "company_name": "Oy Testi Ab"}`))
	}))
	t.Cleanup(srv.Close)

	out := tp.runExpectSuccess("--api-url", srv.URL, "draft", "show", "app-9")
	assert.Contains(t, out, "Application app-9")
	assert.Contains(t, out, "Oy Testi Ab")

	out, code := tp.runExpectFailure("--api-url", srv.URL, "draft", "show", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "not found")
}

func TestBinary_ApplyNeedsToken(t *testing.T) {
	tp := newTestProject(t)

	out, code := tp.runExpectFailure("--api-url", "http://127.0.0.1:1", "apply")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "not signed in")
}
