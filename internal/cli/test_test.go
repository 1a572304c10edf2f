package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir, "--golden", goldenDir)
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ rotation_modes")
	assert.Contains(t, out, "✓ precision_floor")
	assert.Contains(t, out, "✓ bell")
	assert.Contains(t, out, "Test Summary: 4 passed, 0 failed, 4 total")
}

func TestTestCommandFilterJSON(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "json"}), scenariosDir, "--golden", goldenDir, "--filter", "rotation_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "rotation_modes", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
}

func TestTestCommandUpdateWritesGolden(t *testing.T) {
	golden := t.TempDir()

	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir, "--golden", golden, "--filter", "precision_*", "--update")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(golden, "precision_floor.golden"))
	require.NoError(t, err)
	committed, err := os.ReadFile(filepath.Join(goldenDir, "precision_floor.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(committed), string(written))
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	golden := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(golden, "bell.golden"), []byte(`{"stale":true}`), 0o644))

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir, "--golden", golden, "--filter", "bell")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bell")
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: wrong_distance
hardware:
  preset: basic_sc
program:
  name: bell
  subroutines:
    - name: main
      qasm: "qreg q[2]; h q[0]; cx q[0],q[1];"
budget:
  total: 1e-3
steps:
  - name: space
    optimization: Space
    expect:
      code_distance: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0o644))

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_distance")
	assert.Contains(t, out, "code_distance")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	files, err := findScenarioFiles(scenariosDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 4)

	files, err = findScenarioFiles(scenariosDir, "*_*")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	_, err = findScenarioFiles(scenariosDir, "[")
	require.Error(t, err)
}
