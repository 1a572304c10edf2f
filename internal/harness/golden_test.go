package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Regenerate with: go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"rotation_modes", "precision_floor"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/rotation_modes.yaml")
	require.NoError(t, err)

	r1, err := Run(s)
	require.NoError(t, err)
	r2, err := Run(s)
	require.NoError(t, err)

	a, err := Snapshot(s.Name, s.RunToken, r1)
	require.NoError(t, err)
	b, err := Snapshot(s.Name, s.RunToken, r2)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSnapshot_DefaultRunTokenAndNullResult(t *testing.T) {
	result := &Result{Trace: testTrace()[2:]}

	snap, err := Snapshot("null_only", "", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"run_token":"test-run-default","scenario_name":"null_only","trace":[{"code_distance":-1,"inserted":false,"logical_error_rate":"1","n_factories":0,"n_logical_qubits":0,"n_t_per_rotation":0,"optimization":"Space","physical_qubits":0,"seq":0,"step":"null","total_cycles":0,"total_time":"0.000e+00","warnings":["no_viable_factory"]}]}`,
		string(snap))
}
