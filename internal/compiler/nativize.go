package compiler

import (
	"github.com/roach88/qre/internal/ir"
)

// Nativize rewrites c over the gates the estimator prices directly.
// SWAP becomes three CNOTs and identities are dropped. Every other known
// gate is kept; non-Clifford gates are handled by graph-state lowering.
func Nativize(c ir.Circuit) ir.Circuit {
	out := ir.Circuit{Name: c.Name, NumQubits: c.NumQubits}
	for _, op := range c.Operations {
		switch op.Gate {
		case ir.GateI:
		case ir.GateSWAP:
			a, b := op.Qubits[0], op.Qubits[1]
			out.Operations = append(out.Operations,
				ir.Op(ir.GateCNOT, a, b),
				ir.Op(ir.GateCNOT, b, a),
				ir.Op(ir.GateCNOT, a, b))
		default:
			out.Operations = append(out.Operations, op)
		}
	}
	return out
}
