// Package substrate schedules graph-state measurements onto a lattice.
//
// A Scheduler partitions graph nodes into measurement steps. Nodes in the
// same step are measured together, so adjacent nodes must land in
// different steps. The estimator only needs the steps, not the lattice
// placement.
package substrate

import (
	"slices"

	"github.com/roach88/qre/internal/graphstate"
)

// Schedule is an ordered list of measurement steps. Each step lists node
// indices in ascending order.
type Schedule struct {
	Layers [][]int
}

// Steps returns the number of measurement steps.
func (s Schedule) Steps() int {
	return len(s.Layers)
}

// Scheduler computes measurement steps for a graph state.
type Scheduler interface {
	Schedule(g *graphstate.Graph) Schedule
}

// Greedy is the default scheduler: Welsh-Powell colouring. Nodes are
// visited by descending degree (ties by index) and given the smallest
// colour unused by their neighbours. Each colour is one step.
type Greedy struct{}

// Schedule implements Scheduler.
func (Greedy) Schedule(g *graphstate.Graph) Schedule {
	n := g.Nodes()
	if n == 0 {
		return Schedule{}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return g.Degree(b) - g.Degree(a)
	})

	colour := make([]int, n)
	for i := range colour {
		colour[i] = -1
	}
	numColours := 0
	for _, v := range order {
		used := make(map[int]bool, g.Degree(v))
		for w := range g.Adjacency[v] {
			if colour[w] >= 0 {
				used[colour[w]] = true
			}
		}
		c := 0
		for used[c] {
			c++
		}
		colour[v] = c
		numColours = max(numColours, c+1)
	}

	layers := make([][]int, numColours)
	for v := range n {
		layers[colour[v]] = append(layers[colour[v]], v)
	}
	return Schedule{Layers: layers}
}

// Validate reports whether s is a proper schedule of g: every node appears
// exactly once and no step contains two adjacent nodes.
func Validate(g *graphstate.Graph, s Schedule) bool {
	seen := make([]bool, g.Nodes())
	for _, layer := range s.Layers {
		for i, v := range layer {
			if v < 0 || v >= len(seen) || seen[v] {
				return false
			}
			seen[v] = true
			for _, w := range layer[i+1:] {
				if g.HasEdge(v, w) {
					return false
				}
			}
		}
	}
	return !slices.Contains(seen, false)
}
