package engine

import (
	"math"

	"github.com/roach88/qre/internal/graphstate"
	"github.com/roach88/qre/internal/ir"
)

// ConsumeTMeasurements performs one consumption round: it decrements up
// to capacity distinct non-zero entries of remaining, earliest first, and
// returns how many it decremented. A capacity below 1 is treated as 1.
//
// Each call takes at most one measurement per entry, so draining r takes
// between max(max(r), ceil(sum/capacity)) and sum calls. Earliest-first
// order can miss the lower bound even when no entry exceeds
// ceil(sum/capacity): [1 1 2] at capacity 2 takes 3 calls.
func ConsumeTMeasurements(remaining []int, capacity int) int {
	capacity = max(capacity, 1)
	consumed := 0
	for i := range remaining {
		if consumed == capacity {
			break
		}
		if remaining[i] > 0 {
			remaining[i]--
			consumed++
		}
	}
	return consumed
}

// layerDemand lists the T measurements each non-Clifford item of a layer
// needs: rotation items first, then T items.
func layerDemand(layer []int, items [][]graphstate.Item, k int) []int {
	var rot, t []int
	for _, v := range layer {
		for _, it := range items[v] {
			switch it {
			case graphstate.ItemRotation:
				if k > 0 {
					rot = append(rot, k)
				}
			case graphstate.ItemT:
				t = append(t, 1)
			}
		}
	}
	return append(rot, t...)
}

// layerCost is the cycle cost of one measurement layer.
type layerCost struct {
	cycles      int
	rounds      int
	maxConsumed int
}

// costLayer prices one layer at distance d. Graph preparation takes d
// cycles and overlaps the first distillation; every consumption round then
// waits for the slower of a distillation run and a d-cycle measurement.
func costLayer(mode ir.Optimization, d int, demand []int, f *ir.MagicStateFactory) layerCost {
	total := 0
	for _, r := range demand {
		total += r
	}
	if total == 0 || f == nil {
		return layerCost{cycles: d}
	}

	capacity := f.OutputPerRun
	if mode == ir.Time {
		capacity = total
	}
	remaining := append([]int(nil), demand...)
	lc := layerCost{}
	for total > 0 {
		n := ConsumeTMeasurements(remaining, capacity)
		total -= n
		lc.rounds++
		lc.maxConsumed = max(lc.maxConsumed, n)
	}

	distill := int(math.Ceil(f.DistillationCycles))
	lc.cycles = max(d, distill) + d + (lc.rounds-1)*max(distill, d)
	return lc
}
