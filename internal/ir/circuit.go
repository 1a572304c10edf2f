package ir

import (
	"fmt"
	"strings"
)

// Gate names an operation. Names are upper case.
type Gate string

// Gates understood by the estimator. The graph-state builder accepts only
// the native Clifford subset; T, TDG and the rotations are lowered first.
const (
	GateI    Gate = "I"
	GateX    Gate = "X"
	GateY    Gate = "Y"
	GateZ    Gate = "Z"
	GateH    Gate = "H"
	GateS    Gate = "S"
	GateSDG  Gate = "SDG"
	GateCZ   Gate = "CZ"
	GateCNOT Gate = "CNOT"
	GateSWAP Gate = "SWAP"
	GateT    Gate = "T"
	GateTDG  Gate = "TDG"
	GateRZ   Gate = "RZ"
	GateRX   Gate = "RX"
	GateRY   Gate = "RY"
)

type gateInfo struct {
	arity  int
	params int
}

var gateTable = map[Gate]gateInfo{
	GateI: {1, 0}, GateX: {1, 0}, GateY: {1, 0}, GateZ: {1, 0},
	GateH: {1, 0}, GateS: {1, 0}, GateSDG: {1, 0},
	GateT: {1, 0}, GateTDG: {1, 0},
	GateRZ: {1, 1}, GateRX: {1, 1}, GateRY: {1, 1},
	GateCZ: {2, 0}, GateCNOT: {2, 0}, GateSWAP: {2, 0},
}

// ParseGate normalizes a gate name. Common aliases (cx, id, tdag) are accepted.
func ParseGate(name string) (Gate, bool) {
	g := Gate(strings.ToUpper(name))
	switch g {
	case "CX":
		g = GateCNOT
	case "ID":
		g = GateI
	case "SDAG":
		g = GateSDG
	case "TDAG":
		g = GateTDG
	}
	_, ok := gateTable[g]
	return g, ok
}

// Known reports whether g is a gate the estimator understands.
func (g Gate) Known() bool {
	_, ok := gateTable[g]
	return ok
}

// Arity returns the number of qubits g acts on, or 0 for unknown gates.
func (g Gate) Arity() int {
	return gateTable[g].arity
}

// IsNative reports whether g belongs to the graph-state native set
// {I, X, Y, Z, H, S, SDG, CZ, CNOT}.
func (g Gate) IsNative() bool {
	switch g {
	case GateI, GateX, GateY, GateZ, GateH, GateS, GateSDG, GateCZ, GateCNOT:
		return true
	}
	return false
}

// IsRotation reports whether g is an arbitrary-angle rotation that needs
// gate synthesis.
func (g Gate) IsRotation() bool {
	return g == GateRZ || g == GateRX || g == GateRY
}

// IsT reports whether g is a T or T-dagger gate.
func (g Gate) IsT() bool {
	return g == GateT || g == GateTDG
}

// Operation is one gate application.
type Operation struct {
	Gate   Gate      `json:"gate"`
	Qubits []int     `json:"qubits"`
	Params []float64 `json:"params,omitempty"`
}

// Op builds an Operation without parameters.
func Op(g Gate, qubits ...int) Operation {
	return Operation{Gate: g, Qubits: qubits}
}

// Rot builds a single-qubit rotation.
func Rot(g Gate, angle float64, qubit int) Operation {
	return Operation{Gate: g, Qubits: []int{qubit}, Params: []float64{angle}}
}

func (o Operation) String() string {
	var sb strings.Builder
	sb.WriteString(string(o.Gate))
	if len(o.Params) > 0 {
		sb.WriteByte('(')
		for i, p := range o.Params {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%g", p)
		}
		sb.WriteByte(')')
	}
	for i, q := range o.Qubits {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", q)
	}
	return sb.String()
}

// Circuit is a named list of operations over NumQubits qubits.
type Circuit struct {
	Name       string      `json:"name"`
	NumQubits  int         `json:"num_qubits"`
	Operations []Operation `json:"operations"`
}

// Validate checks gate names, arity, parameter counts and qubit ranges.
func (c Circuit) Validate() error {
	if c.NumQubits < 0 {
		return fmt.Errorf("circuit %q: negative qubit count %d", c.Name, c.NumQubits)
	}
	for i, op := range c.Operations {
		info, ok := gateTable[op.Gate]
		if !ok {
			return fmt.Errorf("circuit %q op %d: unknown gate %q", c.Name, i, op.Gate)
		}
		if len(op.Qubits) != info.arity {
			return fmt.Errorf("circuit %q op %d: %s takes %d qubit(s), got %d", c.Name, i, op.Gate, info.arity, len(op.Qubits))
		}
		if len(op.Params) != info.params {
			return fmt.Errorf("circuit %q op %d: %s takes %d parameter(s), got %d", c.Name, i, op.Gate, info.params, len(op.Params))
		}
		for _, q := range op.Qubits {
			if q < 0 || q >= c.NumQubits {
				return fmt.Errorf("circuit %q op %d: qubit %d out of range [0,%d)", c.Name, i, q, c.NumQubits)
			}
		}
		if info.arity == 2 && op.Qubits[0] == op.Qubits[1] {
			return fmt.Errorf("circuit %q op %d: %s on identical qubits %d", c.Name, i, op.Gate, op.Qubits[0])
		}
	}
	return nil
}

// CountT returns the number of T and TDG gates.
func (c Circuit) CountT() int {
	n := 0
	for _, op := range c.Operations {
		if op.Gate.IsT() {
			n++
		}
	}
	return n
}

// CountRotations returns the number of RZ, RX and RY gates.
func (c Circuit) CountRotations() int {
	n := 0
	for _, op := range c.Operations {
		if op.Gate.IsRotation() {
			n++
		}
	}
	return n
}

// CountTwoQubit returns the number of two-qubit gates.
func (c Circuit) CountTwoQubit() int {
	n := 0
	for _, op := range c.Operations {
		if op.Gate.Arity() == 2 {
			n++
		}
	}
	return n
}

// Canonical returns the circuit as a canonical-JSON object.
func (c Circuit) Canonical() Object {
	ops := make(Array, len(c.Operations))
	for i, op := range c.Operations {
		o := Object{
			"gate":   String(op.Gate),
			"qubits": Ints(op.Qubits),
		}
		if len(op.Params) > 0 {
			params := make(Array, len(op.Params))
			for j, p := range op.Params {
				params[j] = Float(p)
			}
			o["params"] = params
		}
		ops[i] = o
	}
	return Object{
		"name":       String(c.Name),
		"num_qubits": Int(c.NumQubits),
		"operations": ops,
	}
}
