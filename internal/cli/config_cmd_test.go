package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/config"
)

// ---- helpers ----------------------------------------------------------------

// captureOutput runs Execute() with the provided args, capturing stdout and
// stderr. It returns (stdout, stderr, exitCode).
func captureOutput(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr
	rOut, wOut, err := os.Pipe()
	require.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = wOut
	os.Stderr = wErr
	t.Cleanup(func() {
		os.Stdout = oldStdout
		os.Stderr = oldStderr
	})

	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)

	code := Execute()

	wOut.Close()
	wErr.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	_, _ = stdoutBuf.ReadFrom(rOut)
	_, _ = stderrBuf.ReadFrom(rErr)

	os.Stdout = oldStdout
	os.Stderr = oldStderr

	return stdoutBuf.String(), stderrBuf.String(), code
}

// writeToml writes hakija.toml to dir and returns its path.
func writeToml(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// inTempDir runs the test from an empty directory so no hakija.toml is found.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// ---- registration -----------------------------------------------------------

func TestConfigCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range configCmd.Commands() {
		names[cmd.Use] = true
	}
	assert.True(t, names["debug"])
	assert.True(t, names["validate"])
	assert.Equal(t, "config", configCmd.Use)
	assert.Contains(t, configCmd.Long, "Inspect")
}

func TestConfigCmd_NoSubcommand_ShowsHelp(t *testing.T) {
	resetRootCmd(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config"})

	code := Execute()

	assert.Equal(t, 0, code)
	assert.Contains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "validate")
}

// ---- config debug -----------------------------------------------------------

func TestConfigDebugCmd_DefaultsOnly_NoFile(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)

	stdout, _, code := captureOutput(t, "config", "debug")

	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Configuration Debug")
	assert.Contains(t, stdout, "Config file: none found")
	for _, section := range []string{"[backend]", "[form]", "[benefit]"} {
		assert.Contains(t, stdout, section)
	}
	assert.Contains(t, stdout, `"http://localhost:8000"`)
	assert.Contains(t, stdout, "(source: default)")
}

func TestConfigDebugCmd_WithConfigFile(t *testing.T) {
	resetRootCmd(t)
	dir := inTempDir(t)
	writeToml(t, dir, `
[backend]
url = "https://api.example.test"
token = "secret-token-1234"

[form]
locale = "sv"
`)

	stdout, _, code := captureOutput(t, "config", "debug")

	require.Equal(t, 0, code)
	assert.Contains(t, stdout, config.ConfigFileName)
	assert.Contains(t, stdout, `"https://api.example.test"`)
	assert.Contains(t, stdout, "(source: file)")
	assert.Contains(t, stdout, `"****1234"`)
	assert.NotContains(t, stdout, "secret-token")
}

func TestConfigDebugCmd_EnvAndFlagsOverride(t *testing.T) {
	resetRootCmd(t)
	dir := inTempDir(t)
	writeToml(t, dir, "[form]\nlocale = \"sv\"\n")
	t.Setenv("HAKIJA_LOCALE", "en")

	stdout, _, code := captureOutput(t, "--api-url", "http://cli.test", "config", "debug")

	require.Equal(t, 0, code)
	assert.Contains(t, stdout, `"http://cli.test"`)
	assert.Contains(t, stdout, "(source: cli)")
	assert.Contains(t, stdout, `"en"`)
	assert.Contains(t, stdout, "(source: env)")
}

func TestConfigDebugCmd_ExplicitConfigFlag(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)
	path := writeToml(t, t.TempDir(), "[benefit]\nmonths = 6\n")

	stdout, _, code := captureOutput(t, "--config", path, "config", "debug")

	require.Equal(t, 0, code)
	assert.Contains(t, stdout, path)
	assert.Contains(t, stdout, "6")
}

func TestConfigDebugCmd_ExplicitConfigFlag_FileNotFound(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)

	_, stderr, code := captureOutput(t, "--config", "/nonexistent/hakija.toml", "config", "debug")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "loading config")
}

func TestConfigDebugCmd_BadEnvValue(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)
	t.Setenv("HAKIJA_RATE_LIMIT", "fast")

	_, stderr, code := captureOutput(t, "config", "debug")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "resolving config")
}

func TestConfigDebugCmd_RejectsExtraArgs(t *testing.T) {
	resetRootCmd(t)

	_, _, code := captureOutput(t, "config", "debug", "extra")
	assert.Equal(t, 1, code)
}

// ---- config validate --------------------------------------------------------

func TestConfigValidateCmd_DefaultsOnly_WarnsAboutToken(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)

	stdout, _, code := captureOutput(t, "config", "validate")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Warnings:")
	assert.Contains(t, stdout, "[backend.token]")
	assert.Contains(t, stdout, "0 error(s), 1 warning(s)")
}

func TestConfigValidateCmd_ValidConfig_NoIssues(t *testing.T) {
	resetRootCmd(t)
	dir := inTempDir(t)
	writeToml(t, dir, "[backend]\ntoken = \"abc\"\n")

	stdout, _, code := captureOutput(t, "config", "validate")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "No issues found.")
}

func TestConfigValidateCmd_InvalidConfig_ExitsOne(t *testing.T) {
	resetRootCmd(t)
	dir := inTempDir(t)
	writeToml(t, dir, `
[backend]
url = "ftp://example.test"

[benefit]
months = 40
`)

	stdout, stderr, code := captureOutput(t, "config", "validate")

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Errors:")
	assert.Contains(t, stdout, "[backend.url]")
	assert.Contains(t, stdout, "[benefit.months]")
	assert.Contains(t, stderr, "configuration has 2 error(s)")
}

func TestConfigValidateCmd_UnknownKeys_ShowsWarning(t *testing.T) {
	resetRootCmd(t)
	dir := inTempDir(t)
	writeToml(t, dir, "[backend]\ntoken = \"abc\"\ncolour = \"blue\"\n")

	stdout, _, code := captureOutput(t, "config", "validate")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "[backend.colour] unknown configuration key")
}

// ---- helpers under test -----------------------------------------------------

func TestLoadConfig_ErrorsPointAtValidate(t *testing.T) {
	resetRootCmd(t)
	dir := inTempDir(t)
	writeToml(t, dir, "[form]\nlocale = \"de\"\n")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "form.locale")
	assert.Contains(t, err.Error(), "hakija config validate")
}

func TestCLIOverrides(t *testing.T) {
	resetRootCmd(t)

	o := cliOverrides()
	assert.Nil(t, o.BackendURL)
	assert.Nil(t, o.Locale)

	flagAPIURL, flagLocale = "http://x.test", "en"
	o = cliOverrides()
	require.NotNil(t, o.BackendURL)
	assert.Equal(t, "http://x.test", *o.BackendURL)
	assert.Equal(t, "en", *o.Locale)
}

func TestFmtSecret(t *testing.T) {
	assert.Equal(t, `""`, fmtSecret(""))
	assert.Equal(t, `"****"`, fmtSecret("abc"))
	assert.Equal(t, `"****wxyz"`, fmtSecret("abcdwxyz"))
}

func TestPrintValidationResult_NoIssues(t *testing.T) {
	var buf bytes.Buffer
	configValidateCmd.SetOut(&buf)
	t.Cleanup(func() { configValidateCmd.SetOut(nil) })

	printValidationResult(configValidateCmd, &config.ValidationResult{})
	assert.Contains(t, buf.String(), "No issues found.")
}

func TestSourceStyle_AllSources(t *testing.T) {
	for _, src := range []config.ConfigSource{config.SourceDefault, config.SourceFile, config.SourceEnv, config.SourceCLI} {
		rendered := sourceStyle(src).Render(string(src))
		assert.True(t, strings.Contains(rendered, string(src)))
	}
}
