package engine

import (
	"errors"
	"fmt"
)

// EstimateError represents a fatal error detected while estimating.
//
// Estimate errors include:
//   - Invalid program: subroutines disagree on qubit count or fail validation
//   - Invalid budget: a share needed by the program is zero
//   - Compile failure: a subroutine cannot be lowered to a graph state
//
// Recovered conditions (no viable factory, decoder out of range, precision
// exhaustion) are never errors; they become warnings on the result.
type EstimateError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Program names the program being estimated.
	Program string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes estimate errors.
type ErrorCode string

const (
	// ErrCodeInvalidProgram indicates the program failed validation.
	ErrCodeInvalidProgram ErrorCode = "INVALID_PROGRAM"

	// ErrCodeInvalidBudget indicates the error budget cannot serve the program.
	ErrCodeInvalidBudget ErrorCode = "INVALID_BUDGET"

	// ErrCodeCompileFailed indicates a subroutine could not be compiled.
	ErrCodeCompileFailed ErrorCode = "COMPILE_FAILED"
)

// Error implements the error interface.
func (e *EstimateError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Program != "" {
		msg = fmt.Sprintf("%s (program=%s)", msg, e.Program)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *EstimateError) Unwrap() error {
	return e.Err
}

// NoViableDistanceError is returned when no code distance below the
// configured bound keeps the logical error rate under the error-correction
// budget. The synthesis retry loop never raises the bound.
type NoViableDistanceError struct {
	Program     string
	Volume      int
	Target      float64
	MaxDistance int
}

func (e *NoViableDistanceError) Error() string {
	return fmt.Sprintf("no code distance below %d reaches logical error rate %g for space-time volume %d (program=%s)",
		e.MaxDistance, e.Target, e.Volume, e.Program)
}

// IsNoViableDistance reports whether err wraps a NoViableDistanceError.
func IsNoViableDistance(err error) bool {
	var ne *NoViableDistanceError
	return errors.As(err, &ne)
}

// IsInvalidBudget reports whether err is an invalid-budget EstimateError.
func IsInvalidBudget(err error) bool {
	var ee *EstimateError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeInvalidBudget
	}
	return false
}

// IsInvalidProgram reports whether err is an invalid-program EstimateError.
func IsInvalidProgram(err error) bool {
	var ee *EstimateError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeInvalidProgram
	}
	return false
}

// NewInvalidBudgetError creates an EstimateError for an unusable budget.
func NewInvalidBudgetError(program, message string) *EstimateError {
	return &EstimateError{Code: ErrCodeInvalidBudget, Message: message, Program: program}
}

// NewInvalidProgramError creates an EstimateError wrapping a validation failure.
func NewInvalidProgramError(program string, err error) *EstimateError {
	return &EstimateError{Code: ErrCodeInvalidProgram, Message: "program failed validation", Program: program, Err: err}
}

// NewCompileError creates an EstimateError wrapping a graph-state compile failure.
func NewCompileError(program, subroutine string, err error) *EstimateError {
	return &EstimateError{
		Code:    ErrCodeCompileFailed,
		Message: fmt.Sprintf("compiling subroutine %q", subroutine),
		Program: program,
		Err:     err,
	}
}
