package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qre/internal/budget"
	"github.com/roach88/qre/internal/ir"
)

// Scenario defines a conformance scenario: one program estimated under one
// or more settings, with assertions over the results.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Hardware is a preset name or an inline model.
	Hardware HardwareSpec `yaml:"hardware"`

	// Program is the circuit family under estimation.
	Program ProgramSpec `yaml:"program"`

	// Budget is the default error budget for every step.
	Budget BudgetSpec `yaml:"budget"`

	// Estimator holds settings shared by every step.
	Estimator EstimatorSpec `yaml:"estimator,omitempty"`

	// Steps are estimates run in order against one estimator clock.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the recorded history.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunToken tags every estimate. Defaults to "test-run-default".
	RunToken string `yaml:"run_token,omitempty"`
}

// HardwareSpec names a preset, or declares a model inline when Preset is empty.
type HardwareSpec struct {
	Preset                 string  `yaml:"preset,omitempty"`
	Name                   string  `yaml:"name,omitempty"`
	PhysicalQubitErrorRate float64 `yaml:"physical_qubit_error_rate,omitempty"`
	CycleTime              float64 `yaml:"cycle_time,omitempty"`
}

// Model resolves the spec to a hardware model.
func (h HardwareSpec) Model() (ir.HardwareModel, error) {
	if h.Preset != "" {
		hw, ok := ir.Preset(h.Preset)
		if !ok {
			return ir.HardwareModel{}, fmt.Errorf("unknown hardware preset %q (have %v)", h.Preset, ir.PresetNames())
		}
		return hw, nil
	}
	hw := ir.HardwareModel{Name: h.Name, PhysicalQubitErrorRate: h.PhysicalQubitErrorRate, CycleTime: h.CycleTime}
	if hw.Name == "" {
		hw.Name = "custom"
	}
	if err := hw.Validate(); err != nil {
		return ir.HardwareModel{}, err
	}
	return hw, nil
}

// ProgramSpec declares a program from QASM subroutines.
type ProgramSpec struct {
	Name        string           `yaml:"name"`
	Steps       int              `yaml:"steps,omitempty"`
	Subroutines []SubroutineSpec `yaml:"subroutines"`
}

// SubroutineSpec is one named QASM subroutine.
type SubroutineSpec struct {
	Name string `yaml:"name"`
	QASM string `yaml:"qasm"`
}

// BudgetSpec is a total error budget with optional weights.
type BudgetSpec struct {
	Total   float64         `yaml:"total"`
	Weights *budget.Weights `yaml:"weights,omitempty"`
}

// Resolve builds the error budget. Without weights the total is split
// evenly.
func (b BudgetSpec) Resolve() (budget.ErrorBudget, error) {
	if b.Weights == nil {
		return budget.Default(b.Total)
	}
	return budget.New(b.Total, *b.Weights)
}

// EstimatorSpec overrides estimator defaults. Zero fields keep the default.
type EstimatorSpec struct {
	Shots               int     `yaml:"shots,omitempty"`
	MaxDistance         int     `yaml:"max_distance,omitempty"`
	MaxSynthesisRetries int     `yaml:"max_synthesis_retries,omitempty"`
	PrecisionFloor      float64 `yaml:"precision_floor,omitempty"`
	Decoder             string  `yaml:"decoder,omitempty"`
	DecoderMaxDistance  int     `yaml:"decoder_max_distance,omitempty"`
}

// Step is one estimate.
type Step struct {
	// Name identifies the step in assertions and the trace.
	Name string `yaml:"name"`

	// Optimization is "Space" or "Time".
	Optimization string `yaml:"optimization"`

	// Budget overrides the scenario budget for this step.
	Budget *BudgetSpec `yaml:"budget,omitempty"`

	// Expect holds result fields by their JSON name. Subset match: only
	// listed fields are checked.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion validates the trace or the recorded history.
type Assertion struct {
	// Type selects the check:
	// - "has_warning": Step carries a warning with Code
	// - "no_warnings": Step carries no warnings
	// - "null_result": Step returned the null sentinel
	// - "compare": Field of step Left relates to Field of step Right
	// - "history_count": Store holds Count estimates matching Program/Optimization
	Type string `yaml:"type"`

	Step string `yaml:"step,omitempty"`
	Code string `yaml:"code,omitempty"`

	Field    string `yaml:"field,omitempty"`
	Left     string `yaml:"left,omitempty"`
	Right    string `yaml:"right,omitempty"`
	Relation string `yaml:"relation,omitempty"`

	Count        *int   `yaml:"count,omitempty"`
	Program      string `yaml:"program,omitempty"`
	Optimization string `yaml:"optimization,omitempty"`
}

// Assertion type constants.
const (
	AssertHasWarning   = "has_warning"
	AssertNoWarnings   = "no_warnings"
	AssertNullResult   = "null_result"
	AssertCompare      = "compare"
	AssertHistoryCount = "history_count"
)

var relations = map[string]bool{"lt": true, "le": true, "eq": true, "ge": true, "gt": true, "ne": true}

// LoadScenario reads and parses a scenario YAML file. A relative decoder
// path is resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if d := scenario.Estimator.Decoder; d != "" && !filepath.IsAbs(d) {
		scenario.Estimator.Decoder = filepath.Join(filepath.Dir(path), d)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Hardware.Preset == "" && s.Hardware.PhysicalQubitErrorRate == 0 {
		return fmt.Errorf("hardware: preset or physical_qubit_error_rate is required")
	}
	if s.Program.Name == "" {
		return fmt.Errorf("program.name is required")
	}
	if len(s.Program.Subroutines) == 0 {
		return fmt.Errorf("program.subroutines list is required and must be non-empty")
	}
	for i, sub := range s.Program.Subroutines {
		if sub.Name == "" || sub.QASM == "" {
			return fmt.Errorf("program.subroutines[%d]: name and qasm are required", i)
		}
	}
	if s.Budget.Total <= 0 {
		return fmt.Errorf("budget.total is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	names := make(map[string]bool)
	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if names[step.Name] {
			return fmt.Errorf("steps[%d]: duplicate step name %q", i, step.Name)
		}
		names[step.Name] = true
		if _, err := ir.ParseOptimization(step.Optimization); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, names); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps map[string]bool) error {
	needStep := func(name, field string) error {
		if name == "" {
			return fmt.Errorf("assertions[%d]: %s is required for %s", index, field, a.Type)
		}
		if !steps[name] {
			return fmt.Errorf("assertions[%d]: unknown step %q", index, name)
		}
		return nil
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertHasWarning:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for has_warning", index)
		}
		return needStep(a.Step, "step")
	case AssertNoWarnings, AssertNullResult:
		return needStep(a.Step, "step")
	case AssertCompare:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for compare", index)
		}
		if !relations[a.Relation] {
			return fmt.Errorf("assertions[%d]: relation must be one of lt, le, eq, ne, ge, gt", index)
		}
		if err := needStep(a.Left, "left"); err != nil {
			return err
		}
		return needStep(a.Right, "right")
	case AssertHistoryCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
