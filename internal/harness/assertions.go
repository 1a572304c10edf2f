package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s seq=%d d=%d warnings=%d\n",
			i+1, ev.Step, ev.Result.Seq, ev.Result.CodeDistance, len(ev.Result.Warnings))
	}

	return buf.String()
}

func missingStep(kind, step string, trace []TraceEvent) error {
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("step %q in trace", step),
		Actual:   "step did not produce an estimate",
		Trace:    trace,
	}
}

func assertHasWarning(trace []TraceEvent, a Assertion) error {
	ev, ok := findStep(trace, a.Step)
	if !ok {
		return missingStep(a.Type, a.Step, trace)
	}
	if ev.Result.HasWarning(a.Code) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("step %q warns %s", a.Step, a.Code),
		Actual:   fmt.Sprintf("warnings %v", warningCodes(ev.Result)),
		Trace:    trace,
	}
}

func assertNoWarnings(trace []TraceEvent, a Assertion) error {
	ev, ok := findStep(trace, a.Step)
	if !ok {
		return missingStep(a.Type, a.Step, trace)
	}
	if len(ev.Result.Warnings) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("step %q without warnings", a.Step),
		Actual:   fmt.Sprintf("warnings %v", warningCodes(ev.Result)),
		Trace:    trace,
	}
}

func assertNullResult(trace []TraceEvent, a Assertion) error {
	ev, ok := findStep(trace, a.Step)
	if !ok {
		return missingStep(a.Type, a.Step, trace)
	}
	if ev.Result.IsNull() {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("step %q returns the null result", a.Step),
		Actual:   fmt.Sprintf("code distance %d", ev.Result.CodeDistance),
		Trace:    trace,
	}
}

// assertCompare checks Field of Left against Field of Right. Numbers
// compare numerically; other values support only eq and ne.
func assertCompare(trace []TraceEvent, a Assertion) error {
	left, ok := findStep(trace, a.Left)
	if !ok {
		return missingStep(a.Type, a.Left, trace)
	}
	right, ok := findStep(trace, a.Right)
	if !ok {
		return missingStep(a.Type, a.Right, trace)
	}
	lf, err := resultFields(left.Result)
	if err != nil {
		return err
	}
	rf, err := resultFields(right.Result)
	if err != nil {
		return err
	}
	lv, rv := lf[a.Field], rf[a.Field]

	var holds bool
	ln, lok := toNumber(lv)
	rn, rok := toNumber(rv)
	switch {
	case lok && rok:
		holds = compareNumbers(ln, rn, a.Relation)
	case a.Relation == "eq":
		holds = valuesEqual(lv, rv)
	case a.Relation == "ne":
		holds = !valuesEqual(lv, rv)
	default:
		return fmt.Errorf("compare: field %q is not numeric", a.Field)
	}
	if holds {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s.%s %s %s.%s", a.Left, a.Field, a.Relation, a.Right, a.Field),
		Actual:   fmt.Sprintf("%v vs %v", lv, rv),
		Trace:    trace,
	}
}

func compareNumbers(l, r float64, rel string) bool {
	switch rel {
	case "lt":
		return l < r
	case "le":
		return l <= r
	case "eq":
		return l == r
	case "ne":
		return l != r
	case "ge":
		return l >= r
	case "gt":
		return l > r
	}
	return false
}

// assertHistoryCount checks how many estimates the store kept. Identical
// requests share a row, so repeats do not add to the count.
func assertHistoryCount(ctx context.Context, st *store.Store, a Assertion) error {
	if a.Count == nil {
		return fmt.Errorf("history_count: count is required")
	}
	recs, err := st.ListEstimates(ctx, store.Filter{
		Program:      a.Program,
		Optimization: ir.Optimization(a.Optimization),
	})
	if err != nil {
		return fmt.Errorf("history_count: %w", err)
	}
	if len(recs) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d estimates (program=%q optimization=%q)", *a.Count, a.Program, a.Optimization),
		Actual:   fmt.Sprintf("%d estimates", len(recs)),
	}
}

func findStep(trace []TraceEvent, step string) (TraceEvent, bool) {
	for _, ev := range trace {
		if ev.Step == step {
			return ev, true
		}
	}
	return TraceEvent{}, false
}

func warningCodes(r ir.ResourceInfo) []string {
	codes := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		codes[i] = w.Code
	}
	return codes
}

// resultFields decodes r into its JSON field map.
func resultFields(r ir.ResourceInfo) (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return fields, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toNumber widens the numeric types produced by YAML and JSON decoding.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// valuesEqual compares a decoded result value with an expected YAML value.
// Numbers match within a relative 1e-9; maps match as subsets.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if a, ok := toNumber(actual); ok {
		e, ok := toNumber(expected)
		if !ok {
			return false
		}
		return a == e || math.Abs(a-e) <= 1e-9*math.Max(math.Abs(a), math.Abs(e))
	}
	switch e := expected.(type) {
	case map[string]any:
		am, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			if !valuesEqual(am[k], ev) {
				return false
			}
		}
		return true
	case []any:
		aa, ok := actual.([]any)
		if !ok || len(aa) != len(e) {
			return false
		}
		for i := range e {
			if !valuesEqual(aa[i], e[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(actual, expected)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for history_count assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertHasWarning:
			err = assertHasWarning(result.Trace, a)
		case AssertNoWarnings:
			err = assertNoWarnings(result.Trace, a)
		case AssertNullResult:
			err = assertNullResult(result.Trace, a)
		case AssertCompare:
			err = assertCompare(result.Trace, a)
		case AssertHistoryCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: history_count requires database context", i)
			} else {
				err = assertHistoryCount(actx.Ctx, actx.Store, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
