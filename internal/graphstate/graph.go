package graphstate

import (
	"fmt"
	"slices"
)

// Graph is a graph state: one vertex per node, each carrying a local
// Clifford label, with a symmetric adjacency relation. Vertices are
// addressed by index.
type Graph struct {
	LCO       []LCO
	Adjacency []map[int]struct{}
}

// NewGraph returns n isolated vertices, each labelled Hadamard (the |0⟩
// state expressed over the |+⟩ graph-state default).
func NewGraph(n int) *Graph {
	g := &Graph{
		LCO:       make([]LCO, n),
		Adjacency: make([]map[int]struct{}, n),
	}
	for i := range n {
		g.LCO[i] = LCOHadamard
		g.Adjacency[i] = make(map[int]struct{})
	}
	return g
}

// Nodes returns the vertex count.
func (g *Graph) Nodes() int {
	return len(g.LCO)
}

// HasEdge reports whether u and w are adjacent.
func (g *Graph) HasEdge(u, w int) bool {
	_, ok := g.Adjacency[u][w]
	return ok
}

// Neighbors returns the neighbours of v in ascending order.
func (g *Graph) Neighbors(v int) []int {
	ns := make([]int, 0, len(g.Adjacency[v]))
	for w := range g.Adjacency[v] {
		ns = append(ns, w)
	}
	slices.Sort(ns)
	return ns
}

// Degree returns the number of neighbours of v.
func (g *Graph) Degree(v int) int {
	return len(g.Adjacency[v])
}

// MaxDegree returns the largest vertex degree, or 0 for an empty graph.
func (g *Graph) MaxDegree() int {
	m := 0
	for _, adj := range g.Adjacency {
		m = max(m, len(adj))
	}
	return m
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, adj := range g.Adjacency {
		n += len(adj)
	}
	return n / 2
}

// Edges returns every edge once as (u, w) with u < w, sorted.
func (g *Graph) Edges() [][2]int {
	var edges [][2]int
	for u := range g.Adjacency {
		for _, w := range g.Neighbors(u) {
			if u < w {
				edges = append(edges, [2]int{u, w})
			}
		}
	}
	return edges
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		LCO:       slices.Clone(g.LCO),
		Adjacency: make([]map[int]struct{}, len(g.Adjacency)),
	}
	for i, adj := range g.Adjacency {
		c.Adjacency[i] = make(map[int]struct{}, len(adj))
		for w := range adj {
			c.Adjacency[i][w] = struct{}{}
		}
	}
	return c
}

// Equal reports whether g and o have the same labels and edges.
func (g *Graph) Equal(o *Graph) bool {
	if !slices.Equal(g.LCO, o.LCO) || len(g.Adjacency) != len(o.Adjacency) {
		return false
	}
	for i := range g.Adjacency {
		if len(g.Adjacency[i]) != len(o.Adjacency[i]) {
			return false
		}
		for w := range g.Adjacency[i] {
			if !o.HasEdge(i, w) {
				return false
			}
		}
	}
	return true
}

// Validate checks the structural invariants: labels in range, no self
// loops, neighbour indices in range, and a symmetric adjacency relation.
func (g *Graph) Validate() error {
	if len(g.LCO) != len(g.Adjacency) {
		return fmt.Errorf("graph has %d labels but %d adjacency sets", len(g.LCO), len(g.Adjacency))
	}
	for v, l := range g.LCO {
		if !l.Valid() {
			return fmt.Errorf("vertex %d: label %d out of range", v, uint8(l))
		}
	}
	for v, adj := range g.Adjacency {
		for w := range adj {
			if w == v {
				return fmt.Errorf("vertex %d: self loop", v)
			}
			if w < 0 || w >= len(g.Adjacency) {
				return fmt.Errorf("vertex %d: neighbour %d out of range", v, w)
			}
			if !g.HasEdge(w, v) {
				return fmt.Errorf("edge %d-%d is not symmetric", v, w)
			}
		}
	}
	return nil
}

// toggleEdge removes the edge if present, otherwise adds it.
func (g *Graph) toggleEdge(u, w int) {
	if g.HasEdge(u, w) || g.HasEdge(w, u) {
		delete(g.Adjacency[u], w)
		delete(g.Adjacency[w], u)
		return
	}
	g.Adjacency[u][w] = struct{}{}
	g.Adjacency[w][u] = struct{}{}
}

// localComplement toggles every edge among the neighbours of v, then
// composes SqrtX onto v and Phase onto each neighbour.
func (g *Graph) localComplement(v int) {
	ns := g.Neighbors(v)
	for i := 0; i < len(ns); i++ {
		for j := i + 1; j < len(ns); j++ {
			g.toggleEdge(ns[i], ns[j])
		}
	}
	g.LCO[v] = mul[g.LCO[v]][LCOSqrtX]
	for _, w := range ns {
		g.LCO[w] = mul[g.LCO[w]][LCOPhase]
	}
}
