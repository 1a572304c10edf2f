package graphstate

import (
	"github.com/roach88/qre/internal/ir"
)

// Builder applies native gates to a graph state in one forward pass.
//
// Paulis only move the classically tracked Pauli frame, so I, X, Y and Z
// leave the graph unchanged. H, S and SDG compose onto the vertex label.
// CZ is the rewriting kernel; CNOT is H·CZ·H on the target.
type Builder struct {
	g *Graph
}

// NewBuilder starts from n unentangled |0⟩ qubits.
func NewBuilder(n int) *Builder {
	return &Builder{g: NewGraph(n)}
}

// Graph returns a copy of the current graph state.
func (b *Builder) Graph() *Graph {
	return b.g.Clone()
}

// Build runs every operation of a native circuit through a fresh builder.
func Build(c ir.Circuit) (*Graph, error) {
	b := NewBuilder(c.NumQubits)
	for i, op := range c.Operations {
		if err := b.Apply(i, op); err != nil {
			return nil, err
		}
	}
	return b.g, nil
}

// Apply applies op, which sits at position index in its circuit.
func (b *Builder) Apply(index int, op ir.Operation) error {
	if !op.Gate.IsNative() {
		return &UnsupportedGateError{Gate: op.Gate, Index: index}
	}
	want := op.Gate.Arity()
	if len(op.Qubits) != want {
		return &InvalidOperandError{Gate: op.Gate, Index: index, Qubits: op.Qubits, Reason: "wrong number of qubits"}
	}
	for _, q := range op.Qubits {
		if q < 0 || q >= b.g.Nodes() {
			return &InvalidOperandError{Gate: op.Gate, Index: index, Qubits: op.Qubits, Reason: "qubit out of range"}
		}
	}
	if want == 2 && op.Qubits[0] == op.Qubits[1] {
		return &InvalidOperandError{Gate: op.Gate, Index: index, Qubits: op.Qubits, Reason: "control equals target"}
	}

	switch op.Gate {
	case ir.GateI, ir.GateX, ir.GateY, ir.GateZ:
	case ir.GateH:
		b.compose(op.Qubits[0], LCOHadamard)
	case ir.GateS, ir.GateSDG:
		b.compose(op.Qubits[0], LCOPhase)
	case ir.GateCZ:
		b.cz(op.Qubits[0], op.Qubits[1])
	case ir.GateCNOT:
		a, t := op.Qubits[0], op.Qubits[1]
		b.compose(t, LCOHadamard)
		b.cz(a, t)
		b.compose(t, LCOHadamard)
	}
	return nil
}

// compose applies gate class g after the current label of v.
func (b *Builder) compose(v int, g LCO) {
	b.g.LCO[v] = b.g.LCO[v].Then(g)
}

func (b *Builder) cz(a, c int) {
	g := b.g
	if b.hasOtherNeighbors(a, c) {
		b.removeLCO(a, c)
	}
	if b.hasOtherNeighbors(c, a) {
		b.removeLCO(c, a)
	}
	// Clearing c may have pushed a Phase back onto a.
	if b.hasOtherNeighbors(a, c) && !g.LCO[a].zDiagonal() {
		b.removeLCO(a, c)
	}

	connected := g.HasEdge(a, c)
	row := 0
	if connected {
		row = 1
	}
	out := czTable[row][g.LCO[a]][g.LCO[c]]
	if out.edge != connected {
		g.toggleEdge(a, c)
	}
	g.LCO[a], g.LCO[c] = out.a, out.b
}

// hasOtherNeighbors reports whether v has a neighbour besides avoid.
func (b *Builder) hasOtherNeighbors(v, avoid int) bool {
	adj := b.g.Adjacency[v]
	if _, ok := adj[avoid]; ok {
		return len(adj) > 1
	}
	return len(adj) > 0
}

// removeLCO reduces the label of v to the identity class by local
// complementations at v and at a swap partner. The partner is the
// smallest neighbour other than avoid, or avoid itself.
func (b *Builder) removeLCO(v, avoid int) {
	g := b.g
	partner := -1
	for w := range g.Adjacency[v] {
		if w != avoid && (partner < 0 || w < partner) {
			partner = w
		}
	}
	if partner < 0 {
		partner = avoid
	}

	word := decomposition[g.LCO[v]]
	for i := len(word) - 1; i >= 0; i-- {
		if word[i] == LCOSqrtX {
			g.localComplement(v)
		} else {
			g.localComplement(partner)
		}
	}
}
