package engine

import (
	"github.com/roach88/qre/internal/budget"
	"github.com/roach88/qre/internal/ir"
)

// Request returns the canonical description of an estimate request. Two
// requests with equal canonical forms produce identical results, so its
// hash (ir.RequestID) keys persisted estimates.
func (e *GraphResourceEstimator) Request(program ir.Program, b budget.ErrorBudget) ir.Object {
	req := ir.Object{
		"program":      program.Canonical(),
		"hardware":     e.hw.Canonical(),
		"optimization": ir.String(string(e.mode)),
		"budget":       b.Canonical(),
		"shots":        ir.Int(e.shots),
		"synthesis": ir.Object{
			"scaling": ir.Float(e.scaling),
			"offset":  ir.Float(e.offset),
		},
		"limits": ir.Object{
			"min_distance":    ir.Int(e.limits.MinDistance),
			"max_distance":    ir.Int(e.limits.MaxDistance),
			"max_retries":     ir.Int(e.limits.MaxSynthesisRetries),
			"precision_floor": ir.Float(e.limits.PrecisionFloor),
			"t_dominance":     ir.Float(e.limits.TDominance),
		},
	}
	if e.decoder != nil {
		req["decoder"] = e.decoder.Canonical()
	}
	return req
}
