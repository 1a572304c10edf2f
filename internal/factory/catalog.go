// Package factory provides magic-state factory descriptors parameterized
// by hardware noise.
//
// The reference protocols are the 15-to-1 and 20-to-4 distillation blocks
// of Litinski, "Magic State Distillation: Not as Costly as You Think"
// (2019), tabulated at two physical error rates. Distilled error rates
// scale with the cube of the physical error rate relative to the table's
// reference point.
package factory

import (
	"cmp"
	"iter"
	"math"
	"slices"

	"github.com/roach88/qre/internal/ir"
)

type protocol struct {
	name    string
	errRate float64
	qubits  int
	cycles  float64
	outputs int
}

type table struct {
	referenceErrorRate float64
	protocols          []protocol
}

var tables = []table{
	{
		referenceErrorRate: 1e-4,
		protocols: []protocol{
			{"(15-to-1)_{7,3,3}", 4.4e-8, 810, 18.1, 1},
			{"(15-to-1)_{9,3,3}", 9.3e-10, 1150, 18.1, 1},
			{"(15-to-1)_{11,5,5}", 1.9e-11, 2070, 30, 1},
			{"(15-to-1)^4_{9,3,3} x (20-to-4)_{15,7,9}", 2.4e-15, 16400, 90.3, 4},
			{"(15-to-1)^4_{9,3,3} x (15-to-1)_{25,9,9}", 6.3e-25, 18600, 67.8, 1},
		},
	},
	{
		referenceErrorRate: 1e-3,
		protocols: []protocol{
			{"(15-to-1)_{17,7,7}", 4.5e-8, 4620, 42.6, 1},
			{"(15-to-1)^6_{15,5,5} x (20-to-4)_{23,11,13}", 1.4e-10, 43300, 130, 4},
			{"(15-to-1)^4_{13,5,5} x (20-to-4)_{27,13,15}", 2.6e-11, 46800, 157, 4},
			{"(15-to-1)^6_{11,5,5} x (15-to-1)_{25,11,11}", 2.7e-12, 30700, 82.5, 1},
			{"(15-to-1)^6_{13,5,5} x (15-to-1)_{29,11,13}", 3.3e-14, 39100, 97.5, 1},
			{"(15-to-1)^6_{17,7,7} x (15-to-1)_{41,17,17}", 4.5e-20, 73400, 128, 1},
		},
	},
}

// Catalog generates factory descriptors for one physical error rate.
type Catalog struct {
	physicalErrorRate float64
	factories         []ir.MagicStateFactory
}

// NewCatalog selects the reference table with the smallest reference
// error rate at or above p (the noisiest table when p exceeds them all)
// and rescales its distilled error rates to p.
func NewCatalog(p float64) *Catalog {
	t := tables[len(tables)-1]
	for _, cand := range tables {
		if p <= cand.referenceErrorRate {
			t = cand
			break
		}
	}
	scale := math.Pow(p/t.referenceErrorRate, 3)

	c := &Catalog{physicalErrorRate: p}
	for _, proto := range t.protocols {
		c.factories = append(c.factories, ir.MagicStateFactory{
			Name:               proto.name,
			DistilledErrorRate: proto.errRate * scale,
			Footprint:          footprint(proto.qubits),
			PhysicalQubits:     proto.qubits,
			DistillationCycles: proto.cycles,
			OutputPerRun:       proto.outputs,
		})
	}
	return c
}

// footprint derives a near-square tile rectangle holding q physical
// qubits at two qubits per tile.
func footprint(q int) ir.Footprint {
	tiles := float64(q) / 2
	w := int(math.Ceil(math.Sqrt(tiles)))
	h := int(math.Ceil(tiles / float64(w)))
	return ir.Footprint{Width: w, Height: h}
}

// PhysicalErrorRate returns the error rate the catalog was generated for.
func (c *Catalog) PhysicalErrorRate() float64 {
	return c.physicalErrorRate
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	return len(c.factories)
}

// All yields descriptors in the order the optimization mode prefers:
// fewest physical qubits first for Space, shortest distillation first
// for Time. Ties keep table order.
func (c *Catalog) All(mode ir.Optimization) iter.Seq[ir.MagicStateFactory] {
	return func(yield func(ir.MagicStateFactory) bool) {
		order := slices.Clone(c.factories)
		slices.SortStableFunc(order, func(a, b ir.MagicStateFactory) int {
			if mode == ir.Time {
				return cmp.Compare(a.DistillationCycles, b.DistillationCycles)
			}
			return cmp.Compare(a.PhysicalQubits, b.PhysicalQubits)
		})
		for _, f := range order {
			if !yield(f) {
				return
			}
		}
	}
}
