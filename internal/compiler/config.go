package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/qre/internal/budget"
	"github.com/roach88/qre/internal/engine"
	"github.com/roach88/qre/internal/ir"
)

// CompileHardware parses a hardware struct such as
//
//	hardware: basic_sc: {physical_qubit_error_rate: 1e-3, cycle_time: 1e-7}
func CompileHardware(v cue.Value) (ir.HardwareModel, error) {
	if err := v.Err(); err != nil {
		return ir.HardwareModel{}, formatCUEError(err)
	}

	hw := ir.HardwareModel{Name: label(v)}
	var err error
	if hw.PhysicalQubitErrorRate, err = requireFloat(v, "physical_qubit_error_rate"); err != nil {
		return ir.HardwareModel{}, err
	}
	if hw.CycleTime, err = requireFloat(v, "cycle_time"); err != nil {
		return ir.HardwareModel{}, err
	}
	if err := hw.Validate(); err != nil {
		return ir.HardwareModel{}, &CompileError{Field: "hardware." + hw.Name, Message: err.Error(), Pos: v.Pos()}
	}
	return hw, nil
}

// NamedBudget is an error budget declared under a name.
type NamedBudget struct {
	Name   string
	Budget budget.ErrorBudget
}

// CompileBudget parses a budget struct. Without weights the total is split
// evenly across the three error sources.
//
//	budget: tight: {total: 1e-4, weights: {synthesis: 1, error_correction: 3}}
func CompileBudget(v cue.Value) (NamedBudget, error) {
	if err := v.Err(); err != nil {
		return NamedBudget{}, formatCUEError(err)
	}

	name := label(v)
	total, err := requireFloat(v, "total")
	if err != nil {
		return NamedBudget{}, err
	}

	var b budget.ErrorBudget
	if wv := v.LookupPath(cue.ParsePath("weights")); wv.Exists() {
		var w budget.Weights
		if w.CircuitGeneration, err = lookupFloat(wv, "circuit_generation", 0); err != nil {
			return NamedBudget{}, err
		}
		if w.Synthesis, err = lookupFloat(wv, "synthesis", 0); err != nil {
			return NamedBudget{}, err
		}
		if w.ErrorCorrection, err = lookupFloat(wv, "error_correction", 0); err != nil {
			return NamedBudget{}, err
		}
		b, err = budget.New(total, w)
	} else {
		b, err = budget.Default(total)
	}
	if err != nil {
		return NamedBudget{}, &CompileError{Field: "budget." + name, Message: err.Error(), Pos: v.Pos()}
	}
	return NamedBudget{Name: name, Budget: b}, nil
}

// EstimatorSpec holds estimator settings declared in the spec directory.
// Zero values mean "use the estimator default".
type EstimatorSpec struct {
	Optimization        ir.Optimization
	Shots               int
	SynthesisScaling    float64
	SynthesisOffset     float64
	MaxDistance         int
	MaxSynthesisRetries int
}

// CompileEstimator parses the optional estimator block:
//
//	estimator: {optimization: "Time", shots: 100, synthesis: {scaling: 0.53, offset: 4.86}}
func CompileEstimator(v cue.Value) (EstimatorSpec, error) {
	spec := EstimatorSpec{Optimization: ir.Space}
	if !v.Exists() {
		return spec, nil
	}
	if err := v.Err(); err != nil {
		return EstimatorSpec{}, formatCUEError(err)
	}

	mode, err := lookupString(v, "optimization", string(ir.Space))
	if err != nil {
		return EstimatorSpec{}, err
	}
	if spec.Optimization, err = ir.ParseOptimization(mode); err != nil {
		return EstimatorSpec{}, &CompileError{Field: "estimator.optimization", Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("optimization")).Pos()}
	}

	if spec.Shots, err = lookupInt(v, "shots", 0); err != nil {
		return EstimatorSpec{}, err
	}
	if spec.Shots < 0 {
		return EstimatorSpec{}, &CompileError{Field: "estimator.shots", Message: "shots must not be negative", Pos: v.Pos()}
	}
	if spec.MaxDistance, err = lookupInt(v, "max_distance", 0); err != nil {
		return EstimatorSpec{}, err
	}
	if spec.MaxSynthesisRetries, err = lookupInt(v, "max_synthesis_retries", 0); err != nil {
		return EstimatorSpec{}, err
	}
	if sv := v.LookupPath(cue.ParsePath("synthesis")); sv.Exists() {
		if spec.SynthesisScaling, err = lookupFloat(sv, "scaling", engine.DefaultSynthesisScaling); err != nil {
			return EstimatorSpec{}, err
		}
		if spec.SynthesisOffset, err = lookupFloat(sv, "offset", engine.DefaultSynthesisOffset); err != nil {
			return EstimatorSpec{}, err
		}
	}
	return spec, nil
}

// Options converts the spec to estimator options.
func (s EstimatorSpec) Options() []engine.Option {
	opts := []engine.Option{engine.WithOptimization(s.Optimization)}
	if s.Shots > 0 {
		opts = append(opts, engine.WithShots(s.Shots))
	}
	if s.SynthesisScaling != 0 || s.SynthesisOffset != 0 {
		opts = append(opts, engine.WithSynthesis(s.SynthesisScaling, s.SynthesisOffset))
	}
	if s.MaxDistance > 0 || s.MaxSynthesisRetries > 0 {
		limits := engine.DefaultLimits()
		if s.MaxDistance > 0 {
			limits.MaxDistance = s.MaxDistance
		}
		if s.MaxSynthesisRetries > 0 {
			limits.MaxSynthesisRetries = s.MaxSynthesisRetries
		}
		opts = append(opts, engine.WithLimits(limits))
	}
	return opts
}

// String summarizes the spec for verbose output.
func (s EstimatorSpec) String() string {
	return fmt.Sprintf("optimization=%s shots=%d", s.Optimization, s.Shots)
}
