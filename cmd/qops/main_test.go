package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/qops/internal/conformance"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failingCase = `
cases:
  - name: wrong_expectation
    op: QuantizeLinear
    inputs:
      - {name: x, dtype: float32, shape: [2], data: [2, 4]}
      - {name: y_scale, dtype: float32, shape: [], data: [2]}
    outputs:
      - {name: y, dtype: uint8, shape: [2], data: [1, 3]}
`

// runApp runs the CLI with an isolated config directory and returns stdout and stderr.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	isolateConfig(t)

	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(context.Background(), append([]string{"qops"}, args...))
	return stdout.String(), stderr.String(), err
}

// isolateConfig points the user config directory at a fresh temp dir and returns it.
func isolateConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	dir, err := os.UserConfigDir()
	require.NoError(t, err)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runApp(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "qops "+version))
}

func TestOpsCommand(t *testing.T) {
	out, _, err := runApp(t, "ops")
	require.NoError(t, err)
	assert.Equal(t, "ConvInteger\nDequantizeLinear\nQuantizeLinear\n", out)
}

func TestRunBuiltinText(t *testing.T) {
	out, _, err := runApp(t, "run", "--builtin")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS  ConvInteger_with_padding")
	assert.Contains(t, out, " 0 failed")
	assert.NotContains(t, out, "FAIL")
}

func TestRunBuiltinJSON(t *testing.T) {
	builtin, err := conformance.Builtin()
	require.NoError(t, err)

	out, _, err := runApp(t, "--workers", "2", "run", "--builtin", "--format", "json")
	require.NoError(t, err)

	var report conformance.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, len(builtin), report.Passed)
	assert.Zero(t, report.Failed)
}

func TestRunFailingFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fail.yaml", failingCase)

	out, stderr, err := runApp(t, "run", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 cases failed")
	assert.Contains(t, out, "FAIL  wrong_expectation")
	assert.Contains(t, out, "y[1]: want 3, got 2")
	assert.Contains(t, stderr, "case failed")
}

func TestRunDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", failingCase)
	writeFile(t, dir, "notes.txt", "ignored")

	out, _, err := runApp(t, "run", dir)
	require.Error(t, err)
	assert.Contains(t, out, "wrong_expectation")
}

func TestRunArgumentErrors(t *testing.T) {
	_, _, err := runApp(t, "run")
	assert.ErrorContains(t, err, "no case files given")

	_, _, err = runApp(t, "run", "--builtin", "--format", "xml")
	assert.ErrorContains(t, err, "unknown report format")

	_, _, err = runApp(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = runApp(t, "--log-format", "logfmt", "ops")
	assert.ErrorContains(t, err, "unknown log format")

	_, _, err = runApp(t, "--workers=-1", "ops")
	assert.ErrorContains(t, err, "--workers must be >= 0")
}

func TestConfigFileDefaults(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "config.yaml", "format: json\nworkers: 3\nlog_level: error\n")

	out, _, err := runApp(t, "--config", cfg, "run", "--builtin")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "expected JSON report, got %q", out)

	// An explicit flag wins over the config file.
	out, _, err = runApp(t, "--config", cfg, "run", "--builtin", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "passed")
	assert.False(t, json.Valid([]byte(out)))
}

func TestConfigFromXDGHome(t *testing.T) {
	dir := filepath.Join(isolateConfig(t), "qops")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	writeFile(t, dir, "config.yaml", "format: json\n")

	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(context.Background(), []string{"qops", "run", "--builtin"})
	require.NoError(t, err)
	assert.True(t, json.Valid(stdout.Bytes()))
}

func TestConfigErrors(t *testing.T) {
	_, _, err := runApp(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "ops")
	assert.ErrorContains(t, err, "read config")

	bad := writeFile(t, t.TempDir(), "bad.yaml", "workers: [1, 2\n")
	_, _, err = runApp(t, "--config", bad, "ops")
	assert.ErrorContains(t, err, "parse config")
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("QOPS_FORMAT", "json")
	out, _, err := runApp(t, "run", "--builtin")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}
