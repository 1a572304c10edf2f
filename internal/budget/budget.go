// Package budget splits a tolerable failure probability across the error
// sources of a fault-tolerant computation.
package budget

import (
	"errors"
	"fmt"

	"github.com/roach88/qre/internal/ir"
)

// Weights are the relative shares of each error source. Only ratios matter.
type Weights struct {
	CircuitGeneration float64 `json:"circuit_generation" yaml:"circuit_generation"`
	Synthesis         float64 `json:"synthesis" yaml:"synthesis"`
	ErrorCorrection   float64 `json:"error_correction" yaml:"error_correction"`
}

// ErrorBudget holds the absolute failure probability allotted to each
// source. It is immutable once built.
type ErrorBudget struct {
	CircuitGeneration float64 `json:"circuit_generation"`
	Synthesis         float64 `json:"synthesis"`
	ErrorCorrection   float64 `json:"error_correction"`
}

// ErrInvalidBudget is wrapped by every construction error.
var ErrInvalidBudget = errors.New("invalid error budget")

// New splits total proportionally to w.
func New(total float64, w Weights) (ErrorBudget, error) {
	if total <= 0 || total >= 1 {
		return ErrorBudget{}, fmt.Errorf("%w: total %g not in (0,1)", ErrInvalidBudget, total)
	}
	if w.CircuitGeneration < 0 || w.Synthesis < 0 || w.ErrorCorrection < 0 {
		return ErrorBudget{}, fmt.Errorf("%w: negative weight in %+v", ErrInvalidBudget, w)
	}
	sum := w.CircuitGeneration + w.Synthesis + w.ErrorCorrection
	if sum <= 0 {
		return ErrorBudget{}, fmt.Errorf("%w: weights sum to zero", ErrInvalidBudget)
	}
	return ErrorBudget{
		CircuitGeneration: total * w.CircuitGeneration / sum,
		Synthesis:         total * w.Synthesis / sum,
		ErrorCorrection:   total * w.ErrorCorrection / sum,
	}, nil
}

// Default splits total evenly across the three sources.
func Default(total float64) (ErrorBudget, error) {
	return New(total, Weights{CircuitGeneration: 1, Synthesis: 1, ErrorCorrection: 1})
}

// Total returns the sum of the shares.
func (b ErrorBudget) Total() float64 {
	return b.CircuitGeneration + b.Synthesis + b.ErrorCorrection
}

// PerRotation returns the synthesis accuracy each of nRot rotations must
// meet when they share tolerance equally. It returns tolerance unchanged
// when there are no rotations.
func PerRotation(tolerance float64, nRot int) float64 {
	if nRot <= 0 {
		return tolerance
	}
	return tolerance / float64(nRot)
}

// Canonical returns the budget as a canonical-JSON object.
func (b ErrorBudget) Canonical() ir.Object {
	return ir.Object{
		"circuit_generation": ir.Float(b.CircuitGeneration),
		"synthesis":          ir.Float(b.Synthesis),
		"error_correction":   ir.Float(b.ErrorCorrection),
	}
}
