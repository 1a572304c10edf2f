package engine

import (
	"slices"

	"github.com/roach88/qre/internal/graphstate"
	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/substrate"
)

// Partition is the compiled graph state of one subroutine together with
// the bookkeeping the solver needs.
type Partition struct {
	Subroutine   int
	Name         string
	Multiplicity int

	Graph    *graphstate.Graph
	Items    [][]graphstate.Item
	Schedule substrate.Schedule

	MaxDegree    int
	Nodes        int
	Steps        int
	NumT         int
	NumRotations int
}

// degree is the max degree clamped to 1 so isolated nodes still occupy a
// patch.
func (p Partition) degree() int {
	return max(1, p.MaxDegree)
}

// nonClifford returns the T-state demand of this partition at k T states
// per rotation.
func (p Partition) nonClifford(k int) int {
	return p.NumT + p.NumRotations*k
}

// CompiledProgram holds one partition per subroutine that the schedule
// executes. It is owned by a single estimate.
type CompiledProgram struct {
	Program    string
	Partitions []Partition
}

// CompileProgram compiles every scheduled subroutine of p to a graph state
// and schedules its measurements. Partitions are ordered by subroutine
// index; subroutines the schedule never runs are skipped.
func CompileProgram(p ir.Program, scheduler substrate.Scheduler) (*CompiledProgram, error) {
	mult := p.Multiplicities()
	indices := make([]int, 0, len(mult))
	for idx := range mult {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	cp := &CompiledProgram{Program: p.Name}
	for _, idx := range indices {
		sub := p.Subroutines[idx]
		compiled, err := graphstate.Compile(sub)
		if err != nil {
			return nil, NewCompileError(p.Name, sub.Name, err)
		}
		sched := scheduler.Schedule(compiled.Graph)
		cp.Partitions = append(cp.Partitions, Partition{
			Subroutine:   idx,
			Name:         sub.Name,
			Multiplicity: mult[idx],
			Graph:        compiled.Graph,
			Items:        compiled.Items,
			Schedule:     sched,
			MaxDegree:    compiled.Graph.MaxDegree(),
			Nodes:        compiled.Graph.Nodes(),
			Steps:        sched.Steps(),
			NumT:         compiled.CountT(),
			NumRotations: compiled.CountRotations(),
		})
	}
	return cp, nil
}

// TotalT returns the T-gate count weighted by multiplicity.
func (c *CompiledProgram) TotalT() int {
	n := 0
	for _, p := range c.Partitions {
		n += p.Multiplicity * p.NumT
	}
	return n
}

// TotalRotations returns the rotation count weighted by multiplicity.
func (c *CompiledProgram) TotalRotations() int {
	n := 0
	for _, p := range c.Partitions {
		n += p.Multiplicity * p.NumRotations
	}
	return n
}

// Volume returns the space-time volume in logical cells at k T states per
// rotation. Space mode keeps only a degree-sized patch resident and pays
// for T states serially; Time mode keeps every node resident.
func (c *CompiledProgram) Volume(mode ir.Optimization, k int) int {
	v := 0
	for _, p := range c.Partitions {
		t := p.nonClifford(k)
		if mode == ir.Time {
			v += p.Multiplicity * (2*p.Nodes*p.Steps + t)
		} else {
			v += p.Multiplicity * 2 * p.degree() * (p.Steps + t)
		}
	}
	return v
}

// Logical-qubit layout constants. Each node needs a two-tile patch; in
// Time mode it also gets a delivery lane of four tiles per T state the
// factory emits in one run.
const (
	tilesPerNode     = 2
	tilesPerDelivery = 4
)

// LogicalQubits returns the logical-qubit count of the layout for factory
// f. Time-mode delivery lanes scale with the factory's output width; a
// program that needs no factory (f == nil) gets no lanes.
func (c *CompiledProgram) LogicalQubits(mode ir.Optimization, f *ir.MagicStateFactory) int {
	perNode := tilesPerNode
	if mode == ir.Time && f != nil {
		perNode += tilesPerDelivery * f.OutputPerRun
	}
	n := 0
	for _, p := range c.Partitions {
		if mode == ir.Time {
			n = max(n, perNode*p.Nodes)
		} else {
			n = max(n, tilesPerNode*p.degree())
		}
	}
	return n
}
