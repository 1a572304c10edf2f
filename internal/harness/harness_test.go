package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qre/internal/budget"
	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/testutil"
)

func rotationScenario() *Scenario {
	return &Scenario{
		Name:        "rotation",
		Description: "one rotation",
		RunToken:    "run-test",
		Hardware:    HardwareSpec{Preset: "basic_sc"},
		Program: ProgramSpec{
			Name:        "h_rz_cnot",
			Subroutines: []SubroutineSpec{{Name: "main", QASM: testutil.RotationQASM}},
		},
		Budget: BudgetSpec{Total: 1e-3, Weights: &budget.Weights{Synthesis: 1, ErrorCorrection: 1}},
		Steps:  []Step{{Name: "space", Optimization: "Space"}},
	}
}

func TestRun_RotationScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/rotation_modes.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 3)

	assert.Equal(t, "space", result.Trace[0].Step)
	assert.True(t, result.Trace[0].Inserted)
	assert.True(t, result.Trace[1].Inserted)
	assert.False(t, result.Trace[2].Inserted, "identical request is already recorded")
	assert.Equal(t, result.Trace[0].RequestID, result.Trace[2].RequestID)
	assert.NotEqual(t, result.Trace[0].RequestID, result.Trace[1].RequestID)

	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Result.Seq)
		assert.Equal(t, "run-rotation", ev.Result.RunToken)
	}
}

func TestRun_MatchesEstimatorFixture(t *testing.T) {
	result, err := Run(rotationScenario())
	require.NoError(t, err)
	require.Len(t, result.Trace, 1)

	res := result.Trace[0].Result
	assert.Equal(t, 9, res.CodeDistance)
	assert.Equal(t, "h_rz_cnot", res.Program)
	assert.Equal(t, "basic_sc", res.Hardware)
	assert.Equal(t, "0.000306", res.LogicalErrorRateExact)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	s := rotationScenario()
	s.Steps[0].Expect = map[string]any{
		"code_distance": 11,
		"hardware":      "basic_sc",
		"no_such_field": 1,
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "code_distance = 9, want 11")
	assert.Contains(t, result.Errors[1], `expected field "no_such_field" is absent`)
}

func TestRun_NestedExpect(t *testing.T) {
	s := rotationScenario()
	s.Estimator = EstimatorSpec{
		Decoder:            filepath.Join("..", "decoder", "testdata", "decoder.csv"),
		DecoderMaxDistance: 200,
	}
	s.Steps[0].Expect = map[string]any{
		"decoder": map[string]any{"max_decodable_distance": 200},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_EstimateErrorIsReported(t *testing.T) {
	s := rotationScenario()
	s.Budget.Weights = &budget.Weights{CircuitGeneration: 1, Synthesis: 1}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Empty(t, result.Trace)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `steps[0] "space"`)
}

func TestRun_SetupErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr string
	}{
		{"bad qasm", func(s *Scenario) { s.Program.Subroutines[0].QASM = "qreg q[1]; ccx q[0];" }, "program"},
		{"unknown preset", func(s *Scenario) { s.Hardware.Preset = "nope" }, "hardware"},
		{"missing decoder", func(s *Scenario) { s.Estimator.Decoder = filepath.Join(t.TempDir(), "none.csv") }, "decoder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rotationScenario()
			tt.mutate(s)
			_, err := Run(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_StepsRepeatSubroutines(t *testing.T) {
	s := rotationScenario()
	s.Program.Steps = 3
	s.Steps[0].Optimization = "Time"

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, 3, result.Trace[0].Result.NRotations)
	assert.Equal(t, ir.Time, result.Trace[0].Result.Optimization)
}

func TestRunContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunContext(ctx, rotationScenario())
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Empty(t, result.Trace)
}
