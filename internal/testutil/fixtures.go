package testutil

import (
	"io"
	"log/slog"

	"github.com/roach88/qre/internal/ir"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RotationQASM is a two-qubit circuit with one arbitrary-angle rotation.
const RotationQASM = `qreg q[2];
h q[0];
rz(0.3) q[0];
cx q[0],q[1];
`

// RotationProgram is RotationQASM as a single-subroutine program.
func RotationProgram() ir.Program {
	return ir.NewSingleCircuitProgram(ir.Circuit{
		Name:      "h_rz_cnot",
		NumQubits: 2,
		Operations: []ir.Operation{
			ir.Op(ir.GateH, 0),
			ir.Rot(ir.GateRZ, 0.3, 0),
			ir.Op(ir.GateCNOT, 0, 1),
		},
	})
}

// BellProgram is a Clifford-only program; it needs no magic states.
func BellProgram() ir.Program {
	return ir.NewSingleCircuitProgram(ir.Circuit{
		Name:       "bell",
		NumQubits:  2,
		Operations: []ir.Operation{ir.Op(ir.GateH, 0), ir.Op(ir.GateCNOT, 0, 1)},
	})
}
