package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qre/internal/graphstate"
	"github.com/roach88/qre/internal/ir"
)

func TestConsumeTMeasurements(t *testing.T) {
	tests := []struct {
		name      string
		remaining []int
		capacity  int
		want      int
		after     []int
	}{
		{"capacity limits", []int{2, 2, 2}, 2, 2, []int{1, 1, 2}},
		{"skips drained entries", []int{0, 3, 0, 1}, 5, 2, []int{0, 2, 0, 0}},
		{"zero capacity acts as one", []int{1, 1}, 0, 1, []int{0, 1}},
		{"empty", nil, 3, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConsumeTMeasurements(tt.remaining, tt.capacity)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.after, tt.remaining)
		})
	}
}

// drain calls ConsumeTMeasurements until remaining is empty and returns
// the number of calls.
func drain(t *testing.T, remaining []int, capacity int) int {
	t.Helper()
	total := 0
	for _, r := range remaining {
		total += r
	}
	rounds := 0
	for total > 0 {
		n := ConsumeTMeasurements(remaining, capacity)
		require.Positive(t, n)
		total -= n
		rounds++
	}
	for _, r := range remaining {
		require.Zero(t, r)
	}
	return rounds
}

func TestConsumeTMeasurements_RoundBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 200; trial++ {
		remaining := make([]int, rng.IntN(8))
		sum, peak := 0, 0
		for i := range remaining {
			remaining[i] = rng.IntN(10)
			sum += remaining[i]
			peak = max(peak, remaining[i])
		}
		capacity := rng.IntN(5)
		c := max(capacity, 1)

		rounds := drain(t, append([]int(nil), remaining...), capacity)
		lower := max(peak, (sum+c-1)/c)
		assert.GreaterOrEqual(t, rounds, lower, "remaining %v capacity %d", remaining, capacity)
		assert.LessOrEqual(t, rounds, sum, "remaining %v capacity %d", remaining, capacity)
		if c == 1 {
			assert.Equal(t, sum, rounds)
		}
	}
}

func TestConsumeTMeasurements_SingleNodeIsSerial(t *testing.T) {
	assert.Equal(t, 7, drain(t, []int{7}, 4))
	assert.Equal(t, 4, drain(t, []int{4, 4}, 4))
	assert.Equal(t, 2, drain(t, []int{2, 2, 2, 2}, 4))
	assert.Equal(t, 3, drain(t, []int{1, 1, 2}, 2), "earliest first leaves the largest entry for last")
}

func TestLayerDemand(t *testing.T) {
	items := [][]graphstate.Item{
		{graphstate.ItemT, graphstate.ItemRotation},
		nil,
		{graphstate.ItemRotation},
	}

	assert.Equal(t, []int{9, 9, 1}, layerDemand([]int{0, 1, 2}, items, 9))
	assert.Equal(t, []int{1}, layerDemand([]int{0}, items, 0))
	assert.Empty(t, layerDemand([]int{1}, items, 9))
}

func TestCostLayer(t *testing.T) {
	f := &ir.MagicStateFactory{Name: "f", DistillationCycles: 42.6, OutputPerRun: 1}
	wide := &ir.MagicStateFactory{Name: "wide", DistillationCycles: 5, OutputPerRun: 4}

	tests := []struct {
		name   string
		mode   ir.Optimization
		d      int
		demand []int
		f      *ir.MagicStateFactory
		want   layerCost
	}{
		{"empty layer", ir.Space, 9, nil, f, layerCost{cycles: 9}},
		{"no factory", ir.Space, 9, []int{3}, nil, layerCost{cycles: 9}},
		{"single rotation", ir.Space, 9, []int{15}, f, layerCost{cycles: 43 + 9 + 14*43, rounds: 15, maxConsumed: 1}},
		{"space serialises", ir.Space, 7, []int{1, 1}, f, layerCost{cycles: 43 + 7 + 43, rounds: 2, maxConsumed: 1}},
		{"time parallelises", ir.Time, 7, []int{1, 1}, f, layerCost{cycles: 43 + 7, rounds: 1, maxConsumed: 2}},
		{"fast factory waits on measurement", ir.Space, 9, []int{1, 1, 1, 1, 1}, wide, layerCost{cycles: 9 + 9 + 9, rounds: 2, maxConsumed: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, costLayer(tt.mode, tt.d, tt.demand, tt.f))
		})
	}
}

func TestCostLayer_LeavesDemandIntact(t *testing.T) {
	demand := []int{2, 1}
	costLayer(ir.Space, 5, demand, &ir.MagicStateFactory{DistillationCycles: 10, OutputPerRun: 1})
	assert.Equal(t, []int{2, 1}, demand)
}
