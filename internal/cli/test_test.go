package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: rename
description: renaming bumps the version
seed:
  id: t1
  name: Before
  groups: []
steps:
  - op: edit_track
    args: {name: After}
assertions:
  - type: version
    version: 2
`

const failingScenario = `
name: wrong_version
description: expects a version the track never reaches
seed:
  id: t1
  name: Before
  groups: []
steps:
  - op: edit_track
    args: {name: After}
assertions:
  - type: version
    version: 9
`

func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)

	resp, res := decodeData[TestResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Scenarios)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ remove_option_renumbers")
	assert.Contains(t, out, "3 passed, 0 failed, 3 total")
}

func TestTestCommandFailureExitCode(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"pass.yaml": passingScenario, "fail.yaml": failingScenario})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, res := decodeData[TestResult](t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, res.Passed)
	assert.Equal(t, 1, res.Failed)
}

func TestTestCommandFilter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"pass.yaml": passingScenario, "fail.yaml": failingScenario})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--filter", "pa*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"pass.yaml": passingScenario})
	cmdOpts := &RootOptions{Format: "text"}

	out, err := execute(t, NewTestCommand(cmdOpts), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ rename (golden updated)")

	golden := filepath.Join(dir, "golden", "pass.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "After"`)

	// The golden directory is not scanned for scenarios.
	_, err = execute(t, NewTestCommand(cmdOpts), dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, err = execute(t, NewTestCommand(cmdOpts), dir)
	require.Error(t, err)
	assert.Contains(t, out, "golden file mismatch")
}

func TestFindScenarioFiles_InvalidPattern(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"a.yaml": passingScenario})
	_, err := findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}
