package ir

import "fmt"

// Footprint is a rectangular area measured in surface-code tiles.
type Footprint struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MagicStateFactory describes one distillation protocol.
type MagicStateFactory struct {
	Name               string    `json:"name"`
	DistilledErrorRate float64   `json:"distilled_error_rate"`
	Footprint          Footprint `json:"footprint"`
	PhysicalQubits     int       `json:"physical_qubits"`
	// DistillationCycles is the latency of one run in code cycles.
	DistillationCycles float64 `json:"distillation_cycles"`
	// OutputPerRun is the number of T states produced by one run.
	OutputPerRun int `json:"output_per_run"`
}

// Validate checks the positivity constraints of a descriptor.
func (f MagicStateFactory) Validate() error {
	switch {
	case f.DistilledErrorRate <= 0:
		return fmt.Errorf("factory %q: distilled error rate must be positive", f.Name)
	case f.DistillationCycles <= 0:
		return fmt.Errorf("factory %q: distillation cycles must be positive", f.Name)
	case f.OutputPerRun < 1:
		return fmt.Errorf("factory %q: output per run must be at least 1", f.Name)
	case f.PhysicalQubits < 1:
		return fmt.Errorf("factory %q: physical qubits must be at least 1", f.Name)
	}
	return nil
}
