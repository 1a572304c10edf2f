package graphstate

import (
	"github.com/roach88/qre/internal/ir"
)

// Item is a non-Clifford measurement attached to a graph node.
type Item uint8

const (
	// ItemRotation needs a synthesized sequence of T measurements.
	ItemRotation Item = iota
	// ItemT needs exactly one T measurement.
	ItemT
)

// Lowered is a circuit rewritten over graph nodes. Non-Clifford gates are
// removed from the native stream and recorded as items on the node that
// carries the qubit when they act.
type Lowered struct {
	Native ir.Circuit
	Items  [][]Item
	// Wires maps each logical qubit to the node carrying it at the end.
	Wires []int
}

// Nodes returns the number of graph nodes.
func (l *Lowered) Nodes() int {
	return len(l.Items)
}

// CountT returns the number of T items.
func (l *Lowered) CountT() int {
	return l.count(ItemT)
}

// CountRotations returns the number of rotation items.
func (l *Lowered) CountRotations() int {
	return l.count(ItemRotation)
}

func (l *Lowered) count(kind Item) int {
	n := 0
	for _, items := range l.Items {
		for _, it := range items {
			if it == kind {
				n++
			}
		}
	}
	return n
}

type lowering struct {
	ops   []ir.Operation
	items [][]Item
	wire  []int
}

// Lower maps c onto graph nodes. Each qubit starts on its own node.
// Z-diagonal gates and Paulis act in place. T, TDG and RZ become items on
// the current node. A Hadamard on a node with pending items first
// teleports the qubit onto a fresh node through a CNOT, since the pending
// Z-basis measurements no longer commute. RX and RY are lowered to
// H·RZ·H and SDG·H·RZ·H·S; SWAP relabels wires.
func Lower(c ir.Circuit) (*Lowered, error) {
	lw := &lowering{
		items: make([][]Item, c.NumQubits),
		wire:  make([]int, c.NumQubits),
	}
	for q := range lw.wire {
		lw.wire[q] = q
	}

	for i, op := range c.Operations {
		if !op.Gate.Known() {
			return nil, &UnsupportedGateError{Gate: op.Gate, Index: i}
		}
		if len(op.Qubits) != op.Gate.Arity() {
			return nil, &InvalidOperandError{Gate: op.Gate, Index: i, Qubits: op.Qubits, Reason: "wrong number of qubits"}
		}
		for _, q := range op.Qubits {
			if q < 0 || q >= c.NumQubits {
				return nil, &InvalidOperandError{Gate: op.Gate, Index: i, Qubits: op.Qubits, Reason: "qubit out of range"}
			}
		}
		if op.Gate.Arity() == 2 && op.Qubits[0] == op.Qubits[1] {
			return nil, &InvalidOperandError{Gate: op.Gate, Index: i, Qubits: op.Qubits, Reason: "control equals target"}
		}
		lw.apply(op)
	}

	return &Lowered{
		Native: ir.Circuit{Name: c.Name, NumQubits: len(lw.items), Operations: lw.ops},
		Items:  lw.items,
		Wires:  lw.wire,
	}, nil
}

func (lw *lowering) apply(op ir.Operation) {
	q := op.Qubits[0]
	switch op.Gate {
	case ir.GateI, ir.GateX, ir.GateY, ir.GateZ, ir.GateS, ir.GateSDG:
		lw.emit(op.Gate, lw.wire[q])
	case ir.GateH:
		lw.hadamard(q)
	case ir.GateT, ir.GateTDG:
		lw.items[lw.wire[q]] = append(lw.items[lw.wire[q]], ItemT)
	case ir.GateRZ:
		lw.items[lw.wire[q]] = append(lw.items[lw.wire[q]], ItemRotation)
	case ir.GateRX:
		lw.hadamard(q)
		lw.items[lw.wire[q]] = append(lw.items[lw.wire[q]], ItemRotation)
		lw.hadamard(q)
	case ir.GateRY:
		lw.emit(ir.GateSDG, lw.wire[q])
		lw.hadamard(q)
		lw.items[lw.wire[q]] = append(lw.items[lw.wire[q]], ItemRotation)
		lw.hadamard(q)
		lw.emit(ir.GateS, lw.wire[q])
	case ir.GateCZ:
		lw.emit(ir.GateCZ, lw.wire[q], lw.wire[op.Qubits[1]])
	case ir.GateCNOT:
		t := op.Qubits[1]
		lw.teleportIfPending(t)
		lw.emit(ir.GateCNOT, lw.wire[q], lw.wire[t])
	case ir.GateSWAP:
		t := op.Qubits[1]
		lw.wire[q], lw.wire[t] = lw.wire[t], lw.wire[q]
	}
}

func (lw *lowering) hadamard(q int) {
	lw.teleportIfPending(q)
	lw.emit(ir.GateH, lw.wire[q])
}

func (lw *lowering) teleportIfPending(q int) {
	from := lw.wire[q]
	if len(lw.items[from]) == 0 {
		return
	}
	to := len(lw.items)
	lw.items = append(lw.items, nil)
	lw.emit(ir.GateCNOT, from, to)
	lw.wire[q] = to
}

func (lw *lowering) emit(g ir.Gate, qubits ...int) {
	lw.ops = append(lw.ops, ir.Operation{Gate: g, Qubits: qubits})
}

// Compiled is the graph state of one subroutine plus its node items.
type Compiled struct {
	Name  string
	Graph *Graph
	Items [][]Item
}

// Compile lowers c and builds the graph state of the native stream.
func Compile(c ir.Circuit) (*Compiled, error) {
	l, err := Lower(c)
	if err != nil {
		return nil, err
	}
	g, err := Build(l.Native)
	if err != nil {
		return nil, err
	}
	return &Compiled{Name: c.Name, Graph: g, Items: l.Items}, nil
}

// CountT returns the number of T items across all nodes.
func (c *Compiled) CountT() int {
	return (&Lowered{Items: c.Items}).CountT()
}

// CountRotations returns the number of rotation items across all nodes.
func (c *Compiled) CountRotations() int {
	return (&Lowered{Items: c.Items}).CountRotations()
}
