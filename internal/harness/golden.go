package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/testutil"
)

// Snapshot renders a result as canonical JSON for golden comparison.
// Floats are printed with four significant digits.
func Snapshot(name, runToken string, result *Result) ([]byte, error) {
	if runToken == "" {
		runToken = testutil.DefaultRunToken
	}
	trace := make(ir.Array, len(result.Trace))
	for i, ev := range result.Trace {
		trace[i] = snapshotEvent(ev)
	}
	return ir.MarshalCanonical(ir.Object{
		"scenario_name": ir.String(name),
		"run_token":     ir.String(runToken),
		"trace":         trace,
	})
}

func snapshotEvent(ev TraceEvent) ir.Object {
	r := ev.Result
	codes := make(ir.Array, len(r.Warnings))
	for i, w := range r.Warnings {
		codes[i] = ir.String(w.Code)
	}
	obj := ir.Object{
		"step":               ir.String(ev.Step),
		"seq":                ir.Int(r.Seq),
		"optimization":       ir.String(string(r.Optimization)),
		"inserted":           ir.Bool(ev.Inserted),
		"code_distance":      ir.Int(r.CodeDistance),
		"n_logical_qubits":   ir.Int(r.NLogicalQubits),
		"physical_qubits":    ir.Int(r.PhysicalQubits),
		"n_factories":        ir.Int(r.NFactories),
		"total_cycles":       ir.Int(r.TotalCycles),
		"total_time":         ir.String(fmt.Sprintf("%.3e", r.TotalTime)),
		"n_t_per_rotation":   ir.Int(r.NTPerRotation),
		"logical_error_rate": ir.String(exactRate(r)),
		"warnings":           codes,
	}
	if r.FactoryName != "" {
		obj["factory_name"] = ir.String(r.FactoryName)
	}
	return obj
}

func exactRate(r ir.ResourceInfo) string {
	if r.LogicalErrorRateExact != "" {
		return r.LogicalErrorRateExact
	}
	return fmt.Sprintf("%g", r.LogicalErrorRate)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, scenario.RunToken, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name, runToken string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(name, runToken, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
