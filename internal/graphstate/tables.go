package graphstate

import "fmt"

// LCO is a local Clifford class: a single-qubit Clifford modulo Paulis.
// The six classes form S3 and are identified by how conjugation permutes
// the X, Y and Z axes.
type LCO uint8

const (
	LCOIdentity LCO = iota // X,Y,Z -> X,Y,Z
	LCOHadamard            // X,Y,Z -> Z,Y,X
	LCOPhase               // X,Y,Z -> Y,X,Z
	LCOSqrtX               // X,Y,Z -> X,Z,Y
	LCOCycle               // X,Y,Z -> Y,Z,X
	LCOCycleInv            // X,Y,Z -> Z,X,Y

	numLCO = 6
)

var lcoNames = [numLCO]string{"I", "H", "S", "SX", "C", "C2"}

func (l LCO) String() string {
	if !l.Valid() {
		return fmt.Sprintf("LCO(%d)", uint8(l))
	}
	return lcoNames[l]
}

// Valid reports whether l is one of the six classes.
func (l LCO) Valid() bool {
	return l < numLCO
}

// Then returns the class of applying l first and g afterwards (g∘l).
func (l LCO) Then(g LCO) LCO {
	return mul[g][l]
}

// zDiagonal reports whether l maps Z to Z. Only these classes commute with CZ.
func (l LCO) zDiagonal() bool {
	return l == LCOIdentity || l == LCOPhase
}

// mul[a][b] is a∘b: b applied first.
var mul = [numLCO][numLCO]LCO{
	{0, 1, 2, 3, 4, 5},
	{1, 0, 4, 5, 2, 3},
	{2, 5, 0, 4, 3, 1},
	{3, 4, 5, 0, 1, 2},
	{4, 3, 1, 2, 5, 0},
	{5, 2, 3, 1, 0, 4},
}

// decomposition writes each class as a shortest word over {SqrtX, Phase},
// leftmost generator outermost.
var decomposition = [numLCO][]LCO{
	LCOIdentity: {},
	LCOHadamard: {LCOSqrtX, LCOPhase, LCOSqrtX},
	LCOPhase:    {LCOPhase},
	LCOSqrtX:    {LCOSqrtX},
	LCOCycle:    {LCOPhase, LCOSqrtX},
	LCOCycleInv: {LCOSqrtX, LCOPhase},
}

type czOutcome struct {
	edge bool
	a, b LCO
}

// czTable[edge][a][b] is the result of CZ between two vertices whose other
// neighbours have been cleared. Z-diagonal inputs keep Z-diagonal outputs.
var czTable = [2][numLCO][numLCO]czOutcome{
	{
		{{true, 0, 0}, {false, 0, 1}, {true, 0, 2}, {true, 0, 0}, {true, 0, 2}, {false, 0, 5}},
		{{false, 1, 0}, {false, 1, 1}, {false, 1, 2}, {false, 1, 3}, {false, 1, 4}, {false, 1, 5}},
		{{true, 2, 0}, {false, 2, 1}, {true, 2, 2}, {true, 0, 3}, {true, 0, 4}, {false, 2, 5}},
		{{true, 0, 0}, {false, 3, 1}, {true, 0, 2}, {true, 2, 3}, {true, 2, 4}, {false, 3, 5}},
		{{true, 2, 0}, {false, 4, 1}, {true, 2, 2}, {true, 0, 3}, {true, 0, 4}, {false, 4, 5}},
		{{false, 5, 0}, {false, 5, 1}, {false, 5, 2}, {false, 5, 3}, {false, 5, 4}, {false, 5, 5}},
	},
	{
		{{false, 0, 0}, {true, 0, 1}, {false, 0, 2}, {false, 2, 3}, {false, 2, 4}, {true, 0, 5}},
		{{true, 1, 0}, {false, 0, 0}, {true, 1, 2}, {false, 2, 2}, {false, 2, 0}, {false, 0, 2}},
		{{false, 2, 0}, {true, 2, 1}, {false, 2, 2}, {false, 0, 3}, {false, 0, 4}, {true, 2, 5}},
		{{false, 3, 2}, {false, 2, 2}, {false, 3, 0}, {true, 3, 3}, {true, 3, 4}, {false, 2, 0}},
		{{false, 4, 2}, {false, 0, 2}, {false, 4, 0}, {true, 4, 3}, {true, 4, 4}, {false, 0, 0}},
		{{true, 5, 0}, {false, 2, 0}, {true, 5, 2}, {false, 0, 2}, {false, 0, 0}, {false, 2, 2}},
	},
}
