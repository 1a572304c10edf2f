package ir

import (
	"fmt"
	"sort"
)

// Optimization selects what the estimator minimizes.
type Optimization string

const (
	// Space minimizes physical qubits: one factory, graph nodes reused.
	Space Optimization = "Space"
	// Time minimizes runtime: every node resident, factories in parallel.
	Time Optimization = "Time"
)

// ParseOptimization accepts "Space" or "Time" (case-insensitive).
func ParseOptimization(s string) (Optimization, error) {
	switch s {
	case "Space", "space", "SPACE":
		return Space, nil
	case "Time", "time", "TIME":
		return Time, nil
	}
	return "", fmt.Errorf("invalid optimization %q: must be Space or Time", s)
}

// HardwareModel describes the physical device.
type HardwareModel struct {
	Name string `json:"name"`
	// PhysicalQubitErrorRate is the per-operation physical error rate p.
	PhysicalQubitErrorRate float64 `json:"physical_qubit_error_rate"`
	// CycleTime is the duration of one physical operation layer in seconds.
	// A surface-code cycle takes six of them.
	CycleTime float64 `json:"cycle_time"`
}

// Validate checks the error rate is in (0,1) and the cycle time positive.
func (h HardwareModel) Validate() error {
	if h.PhysicalQubitErrorRate <= 0 || h.PhysicalQubitErrorRate >= 1 {
		return fmt.Errorf("hardware %q: physical error rate %g not in (0,1)", h.Name, h.PhysicalQubitErrorRate)
	}
	if h.CycleTime <= 0 {
		return fmt.Errorf("hardware %q: cycle time must be positive, got %g", h.Name, h.CycleTime)
	}
	return nil
}

// Canonical returns the hardware model as a canonical-JSON object.
func (h HardwareModel) Canonical() Object {
	return Object{
		"name":                      String(h.Name),
		"physical_qubit_error_rate": Float(h.PhysicalQubitErrorRate),
		"cycle_time":                Float(h.CycleTime),
	}
}

var presets = map[string]HardwareModel{
	"basic_sc":  {Name: "basic_sc", PhysicalQubitErrorRate: 1e-3, CycleTime: 1e-7},
	"basic_ion": {Name: "basic_ion", PhysicalQubitErrorRate: 1e-4, CycleTime: 1e-5},
}

// BasicSC is the reference superconducting device.
func BasicSC() HardwareModel { return presets["basic_sc"] }

// BasicIon is the reference trapped-ion device.
func BasicIon() HardwareModel { return presets["basic_ion"] }

// Preset looks up a built-in hardware model by name.
func Preset(name string) (HardwareModel, bool) {
	h, ok := presets[name]
	return h, ok
}

// PresetNames lists the built-in hardware models in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
