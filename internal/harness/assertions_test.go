package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/store"
)

func intPtr(n int) *int { return &n }

func testTrace() []TraceEvent {
	return []TraceEvent{
		{Step: "space", Result: ir.ResourceInfo{Seq: 1, Optimization: ir.Space, CodeDistance: 9, NLogicalQubits: 2, TotalCycles: 663, FactoryName: "f"}},
		{Step: "time", Result: ir.ResourceInfo{Seq: 2, Optimization: ir.Time, CodeDistance: 9, NLogicalQubits: 12, TotalCycles: 663, FactoryName: "f",
			Warnings: []ir.Warning{{Code: ir.WarnDecoderOutOfRange}}}},
		{Step: "null", Result: ir.NullResult("p", ir.Space, ir.Warning{Code: ir.WarnNoViableFactory})},
	}
}

func TestAssertHasWarning(t *testing.T) {
	trace := testTrace()

	assert.NoError(t, assertHasWarning(trace, Assertion{Type: AssertHasWarning, Step: "time", Code: ir.WarnDecoderOutOfRange}))

	err := assertHasWarning(trace, Assertion{Type: AssertHasWarning, Step: "space", Code: ir.WarnDecoderOutOfRange})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "has_warning", ae.Type)
	assert.Contains(t, ae.Error(), "Full trace:")
	assert.Contains(t, ae.Error(), "[2] time seq=2 d=9 warnings=1")
}

func TestAssertNoWarnings(t *testing.T) {
	trace := testTrace()
	assert.NoError(t, assertNoWarnings(trace, Assertion{Type: AssertNoWarnings, Step: "space"}))
	assert.Error(t, assertNoWarnings(trace, Assertion{Type: AssertNoWarnings, Step: "time"}))
	assert.Error(t, assertNoWarnings(trace, Assertion{Type: AssertNoWarnings, Step: "missing"}))
}

func TestAssertNullResult(t *testing.T) {
	trace := testTrace()
	assert.NoError(t, assertNullResult(trace, Assertion{Type: AssertNullResult, Step: "null"}))
	assert.Error(t, assertNullResult(trace, Assertion{Type: AssertNullResult, Step: "space"}))
}

func TestAssertCompare(t *testing.T) {
	trace := testTrace()
	tests := []struct {
		field, left, right, rel string
		ok                      bool
	}{
		{"n_logical_qubits", "time", "space", "gt", true},
		{"n_logical_qubits", "time", "space", "le", false},
		{"total_cycles", "time", "space", "eq", true},
		{"total_cycles", "time", "space", "ne", false},
		{"code_distance", "null", "space", "lt", true},
		{"code_distance", "space", "time", "ge", true},
		{"factory_name", "space", "time", "eq", true},
		{"optimization", "space", "time", "ne", true},
	}
	for _, tt := range tests {
		err := assertCompare(trace, Assertion{Type: AssertCompare, Field: tt.field, Left: tt.left, Right: tt.right, Relation: tt.rel})
		if tt.ok {
			assert.NoError(t, err, "%s %s", tt.field, tt.rel)
		} else {
			assert.Error(t, err, "%s %s", tt.field, tt.rel)
		}
	}

	err := assertCompare(trace, Assertion{Type: AssertCompare, Field: "optimization", Left: "space", Right: "time", Relation: "lt"})
	assert.ErrorContains(t, err, "not numeric")
}

func TestAssertHistoryCount(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for i, mode := range []ir.Optimization{ir.Space, ir.Time, ir.Space} {
		res := ir.ResourceInfo{Program: "p", Hardware: "hw", Optimization: mode, Seq: int64(i + 1)}
		_, err := st.WriteEstimate(ctx, string(rune('a'+i)), ir.Object{}, res)
		require.NoError(t, err)
	}

	assert.NoError(t, assertHistoryCount(ctx, st, Assertion{Type: AssertHistoryCount, Count: intPtr(3)}))
	assert.NoError(t, assertHistoryCount(ctx, st, Assertion{Type: AssertHistoryCount, Count: intPtr(2), Optimization: "Space"}))
	assert.NoError(t, assertHistoryCount(ctx, st, Assertion{Type: AssertHistoryCount, Count: intPtr(0), Program: "other"}))
	assert.Error(t, assertHistoryCount(ctx, st, Assertion{Type: AssertHistoryCount, Count: intPtr(1)}))
	assert.Error(t, assertHistoryCount(ctx, st, Assertion{Type: AssertHistoryCount}))
}

func TestEvaluateAssertions(t *testing.T) {
	result := &Result{Trace: testTrace()}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertNoWarnings, Step: "space"},
		{Type: AssertHasWarning, Step: "null", Code: ir.WarnNoViableFactory},
		{Type: AssertHistoryCount, Count: intPtr(0)},
		{Type: "bogus"},
	}, nil)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "requires database context")
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(float64(9), 9))
	assert.True(t, valuesEqual(5e-05, 5e-5))
	assert.True(t, valuesEqual(0.30000000000000004, 0.3))
	assert.False(t, valuesEqual(float64(9), "9"))
	assert.True(t, valuesEqual("x", "x"))
	assert.True(t, valuesEqual(true, true))
	assert.True(t, valuesEqual(nil, nil))
	assert.False(t, valuesEqual(nil, 0))
	assert.True(t, valuesEqual(
		map[string]any{"a": float64(1), "b": "extra"},
		map[string]any{"a": 1},
	))
	assert.False(t, valuesEqual(map[string]any{"a": float64(1)}, map[string]any{"a": 2}))
	assert.True(t, valuesEqual([]any{"x", float64(2)}, []any{"x", 2}))
	assert.False(t, valuesEqual([]any{"x"}, []any{"x", "y"}))
}
