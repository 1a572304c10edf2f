package compiler

import (
	"fmt"

	"github.com/roach88/qre/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Program errors (E101-E109)
	ErrProgramNoSubroutines = "E101" // at least one subroutine required
	ErrProgramEmptySchedule = "E102" // schedule executes nothing
	ErrQubitCountMismatch   = "E103" // subroutines disagree on qubit count
	ErrInvalidCircuit       = "E104" // gate, arity or operand error
	ErrDuplicateName        = "E105" // duplicate subroutine name
	ErrUnknownSubroutine    = "E106" // schedule names a missing subroutine

	// Hardware errors (E110-E119)
	ErrErrorRateRange = "E110" // physical error rate not in (0,1)
	ErrCycleTime      = "E111" // cycle time not positive
	ErrAboveThreshold = "E112" // error rate at or above the code threshold

	// Budget errors (E120-E129)
	ErrBudgetTotal        = "E120" // total not in (0,1)
	ErrBudgetNoCorrection = "E121" // no error-correction share
)

// surfaceCodeThreshold is the physical error rate at which adding distance
// stops suppressing logical errors.
const surfaceCodeThreshold = 0.01

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled program, hardware model or budget.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch x := v.(type) {
	case *ir.Program:
		return validateProgram(x)
	case ir.Program:
		return validateProgram(&x)
	case *ir.HardwareModel:
		return validateHardware(x)
	case ir.HardwareModel:
		return validateHardware(&x)
	case NamedBudget:
		return validateBudget(&x)
	case *NamedBudget:
		return validateBudget(x)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateProgram(p *ir.Program) []ValidationError {
	var errs []ValidationError

	if len(p.Subroutines) == 0 {
		return []ValidationError{{
			Field:   "subroutines",
			Message: "at least one subroutine is required",
			Code:    ErrProgramNoSubroutines,
		}}
	}

	names := make(map[string]bool)
	n := p.Subroutines[0].NumQubits
	for i, c := range p.Subroutines {
		field := fmt.Sprintf("subroutines[%d]", i)
		if names[c.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate subroutine name: %q", c.Name),
				Code:    ErrDuplicateName,
			})
		}
		names[c.Name] = true

		if c.NumQubits != n {
			errs = append(errs, ValidationError{
				Field:   field + ".num_qubits",
				Message: fmt.Sprintf("subroutine %q acts on %d qubits, expected %d", c.Name, c.NumQubits, n),
				Code:    ErrQubitCountMismatch,
			})
		}
		if err := c.Validate(); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".operations",
				Message: err.Error(),
				Code:    ErrInvalidCircuit,
			})
		}
	}

	seq := p.Sequence()
	if len(seq) == 0 {
		errs = append(errs, ValidationError{
			Field:   "schedule",
			Message: fmt.Sprintf("schedule executes no subroutines at steps=%d", p.Steps),
			Code:    ErrProgramEmptySchedule,
		})
	}
	for _, idx := range seq {
		if idx < 0 || idx >= len(p.Subroutines) {
			errs = append(errs, ValidationError{
				Field:   "schedule",
				Message: fmt.Sprintf("schedule references subroutine %d of %d", idx, len(p.Subroutines)),
				Code:    ErrUnknownSubroutine,
			})
			break
		}
	}

	return errs
}

func validateHardware(h *ir.HardwareModel) []ValidationError {
	var errs []ValidationError

	p := h.PhysicalQubitErrorRate
	switch {
	case p <= 0 || p >= 1:
		errs = append(errs, ValidationError{
			Field:   "physical_qubit_error_rate",
			Message: fmt.Sprintf("%g not in (0,1)", p),
			Code:    ErrErrorRateRange,
		})
	case p >= surfaceCodeThreshold:
		errs = append(errs, ValidationError{
			Field:   "physical_qubit_error_rate",
			Message: fmt.Sprintf("%g is at or above the surface-code threshold %g", p, surfaceCodeThreshold),
			Code:    ErrAboveThreshold,
		})
	}
	if h.CycleTime <= 0 {
		errs = append(errs, ValidationError{
			Field:   "cycle_time",
			Message: fmt.Sprintf("must be positive, got %g", h.CycleTime),
			Code:    ErrCycleTime,
		})
	}
	return errs
}

func validateBudget(b *NamedBudget) []ValidationError {
	var errs []ValidationError

	if total := b.Budget.Total(); total <= 0 || total >= 1 {
		errs = append(errs, ValidationError{
			Field:   "budget." + b.Name + ".total",
			Message: fmt.Sprintf("%g not in (0,1)", total),
			Code:    ErrBudgetTotal,
		})
	}
	if b.Budget.ErrorCorrection <= 0 {
		errs = append(errs, ValidationError{
			Field:   "budget." + b.Name + ".weights.error_correction",
			Message: "error-correction share must be positive",
			Code:    ErrBudgetNoCorrection,
		})
	}
	return errs
}
