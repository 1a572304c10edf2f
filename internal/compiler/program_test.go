package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qre/internal/ir"
)

func compileCUE(t *testing.T, src, path string) cue.Value {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return v.LookupPath(cue.ParsePath(path))
}

func TestCompileProgramBasic(t *testing.T) {
	v := compileCUE(t, `
		program: h_rz_cnot: {
			steps: 1
			subroutines: main: qasm: """
				qreg q[2];
				h q[0];
				rz(0.7853981633974483) q[0];
				cx q[0],q[1];
				"""
			schedule: body: ["main"]
		}
	`, "program.h_rz_cnot")

	p, err := CompileProgram(v)
	require.NoError(t, err)

	assert.Equal(t, "h_rz_cnot", p.Name)
	assert.Equal(t, 1, p.Steps)
	require.Len(t, p.Subroutines, 1)
	assert.Equal(t, "main", p.Subroutines[0].Name)
	assert.Equal(t, 2, p.NumQubits())
	assert.Equal(t, []int{0}, p.Sequence())
	assert.Equal(t, 1, p.NumRotations())
	assert.NoError(t, p.Validate())
}

func TestCompileProgramSchedule(t *testing.T) {
	v := compileCUE(t, `
		program: trotter: {
			steps: 3
			subroutines: {
				prep: qasm: "qreg q[2]; h q[0]; h q[1];"
				step: qasm: "qreg q[2]; cx q[0],q[1]; rz(pi/8) q[1]; cx q[0],q[1];"
				measure: qasm: "qreg q[2]; h q[0];"
			}
			schedule: {
				prefix: ["prep"]
				body: ["step"]
				suffix: ["measure"]
			}
		}
	`, "program.trotter")

	p, err := CompileProgram(v)
	require.NoError(t, err)

	require.Len(t, p.Subroutines, 3)
	assert.Equal(t, []string{"prep", "step", "measure"},
		[]string{p.Subroutines[0].Name, p.Subroutines[1].Name, p.Subroutines[2].Name})
	assert.Equal(t, []int{0, 1, 1, 1, 2}, p.Sequence())
	assert.Equal(t, 3, p.NumRotations())
}

func TestCompileProgramDefaultSchedule(t *testing.T) {
	v := compileCUE(t, `
		program: loop: {
			steps: 2
			subroutines: {
				a: qasm: "qreg q[1]; t q[0];"
				b: qasm: "qreg q[1]; h q[0];"
			}
		}
	`, "program.loop")

	p, err := CompileProgram(v)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 1}, p.Sequence())
	assert.Equal(t, 2, p.NumTGates())
}

func TestCompileProgramDecomposeSwaps(t *testing.T) {
	v := compileCUE(t, `
		program: swapper: {
			decompose_swaps: true
			subroutines: main: qasm: "qreg q[2]; swap q[0],q[1];"
		}
	`, "program.swapper")

	p, err := CompileProgram(v)
	require.NoError(t, err)
	assert.Len(t, p.Subroutines[0].Operations, 3)
	assert.Equal(t, 3, p.NumTwoQubitGates())
}

func TestCompileProgramErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		field   string
		message string
	}{
		{
			name:    "missing subroutines",
			src:     `program: p: { steps: 1 }`,
			field:   "subroutines",
			message: "required",
		},
		{
			name:    "missing qasm",
			src:     `program: p: { subroutines: main: {} }`,
			field:   "subroutines.main.qasm",
			message: "required",
		},
		{
			name:    "bad qasm",
			src:     `program: p: { subroutines: main: qasm: "qreg q[1]; foo q[0];" }`,
			field:   "subroutines.main.qasm",
			message: "unsupported gate",
		},
		{
			name:    "unknown scheduled subroutine",
			src:     `program: p: { subroutines: main: qasm: "qreg q[1];", schedule: body: ["other"] }`,
			field:   "schedule.body",
			message: "unknown subroutine",
		},
		{
			name:    "negative steps",
			src:     `program: p: { steps: -1, subroutines: main: qasm: "qreg q[1];" }`,
			field:   "steps",
			message: "negative",
		},
		{
			name:    "steps not an integer",
			src:     `program: p: { steps: "many", subroutines: main: qasm: "qreg q[1];" }`,
			field:   "steps",
			message: "integer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileProgram(compileCUE(t, tt.src, "program.p"))
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, tt.message)
		})
	}
}

func TestCompileHardware(t *testing.T) {
	hw, err := CompileHardware(compileCUE(t,
		`hardware: fast_sc: {physical_qubit_error_rate: 5e-4, cycle_time: 5e-8}`,
		"hardware.fast_sc"))
	require.NoError(t, err)

	assert.Equal(t, ir.HardwareModel{Name: "fast_sc", PhysicalQubitErrorRate: 5e-4, CycleTime: 5e-8}, hw)
}

func TestCompileHardwareErrors(t *testing.T) {
	_, err := CompileHardware(compileCUE(t, `hardware: h: {cycle_time: 1e-7}`, "hardware.h"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "physical_qubit_error_rate is required")

	_, err = CompileHardware(compileCUE(t, `hardware: h: {physical_qubit_error_rate: 2, cycle_time: 1e-7}`, "hardware.h"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in (0,1)")
}

func TestCompileBudget(t *testing.T) {
	nb, err := CompileBudget(compileCUE(t,
		`budget: tight: {total: 1e-3, weights: {synthesis: 1, error_correction: 1}}`,
		"budget.tight"))
	require.NoError(t, err)

	assert.Equal(t, "tight", nb.Name)
	assert.InDelta(t, 5e-4, nb.Budget.Synthesis, 1e-18)
	assert.InDelta(t, 5e-4, nb.Budget.ErrorCorrection, 1e-18)
	assert.Zero(t, nb.Budget.CircuitGeneration)

	even, err := CompileBudget(compileCUE(t, `budget: even: {total: 3e-3}`, "budget.even"))
	require.NoError(t, err)
	assert.InDelta(t, 1e-3, even.Budget.ErrorCorrection, 1e-15)
}

func TestCompileBudgetErrors(t *testing.T) {
	_, err := CompileBudget(compileCUE(t, `budget: b: {total: 1.5}`, "budget.b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid error budget")

	_, err = CompileBudget(compileCUE(t, `budget: b: {weights: {synthesis: 1}}`, "budget.b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total is required")
}

func TestCompileEstimator(t *testing.T) {
	spec, err := CompileEstimator(compileCUE(t, `
		estimator: {
			optimization: "Time"
			shots: 100
			max_distance: 51
			synthesis: {scaling: 1}
		}
	`, "estimator"))
	require.NoError(t, err)

	assert.Equal(t, ir.Time, spec.Optimization)
	assert.Equal(t, 100, spec.Shots)
	assert.Equal(t, 51, spec.MaxDistance)
	assert.Equal(t, 1.0, spec.SynthesisScaling)
	assert.Equal(t, 4.86, spec.SynthesisOffset)
	assert.Len(t, spec.Options(), 4)
}

func TestCompileEstimatorAbsent(t *testing.T) {
	spec, err := CompileEstimator(compileCUE(t, `program: {}`, "estimator"))
	require.NoError(t, err)

	assert.Equal(t, ir.Space, spec.Optimization)
	assert.Len(t, spec.Options(), 1)
}

func TestCompileEstimatorBadOptimization(t *testing.T) {
	_, err := CompileEstimator(compileCUE(t, `estimator: optimization: "Energy"`, "estimator"))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "estimator.optimization", ce.Field)
}

func TestCompileErrorFormatsPosition(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString("program: p: {\n\tsteps: \"x\"\n\tsubroutines: main: qasm: \"qreg q[1];\"\n}", cue.Filename("spec.cue"))
	require.NoError(t, v.Err())

	_, err := CompileProgram(v.LookupPath(cue.ParsePath("program.p")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.cue:2:")
}
