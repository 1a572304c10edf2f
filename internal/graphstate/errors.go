package graphstate

import (
	"errors"
	"fmt"

	"github.com/roach88/qre/internal/ir"
)

// UnsupportedGateError is returned when the builder meets a gate outside
// the native set. Callers must lower the circuit first.
type UnsupportedGateError struct {
	Gate  ir.Gate
	Index int
}

func (e *UnsupportedGateError) Error() string {
	return fmt.Sprintf("unsupported gate %q at operation %d", e.Gate, e.Index)
}

// InvalidOperandError is returned for malformed qubit operands.
type InvalidOperandError struct {
	Gate   ir.Gate
	Index  int
	Qubits []int
	Reason string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("%s at operation %d on qubits %v: %s", e.Gate, e.Index, e.Qubits, e.Reason)
}

// IsUnsupportedGate reports whether err wraps an UnsupportedGateError.
func IsUnsupportedGate(err error) bool {
	var ue *UnsupportedGateError
	return errors.As(err, &ue)
}
