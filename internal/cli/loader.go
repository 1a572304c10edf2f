package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qre/internal/budget"
	"github.com/roach88/qre/internal/compiler"
	"github.com/roach88/qre/internal/ir"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains everything declared in a spec directory.
type LoadResult struct {
	Programs  []ir.Program
	Hardware  []ir.HardwareModel
	Budgets   []compiler.NamedBudget
	Estimator compiler.EstimatorSpec
	CUEValue  cue.Value // raw value for validate
	FileCount int
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads the CUE package in dir and compiles its program,
// hardware, budget and estimator declarations.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	value, fileCount, err := buildValue(dir)
	if err != nil {
		return nil, []error{err}
	}

	result := &LoadResult{CUEValue: value, FileCount: fileCount}
	var errs []error
	failFast := func() bool { return mode == LoadModeFailFast && len(errs) > 0 }

	errs = append(errs, eachField(value, "program", func(label string, v cue.Value) error {
		p, err := compiler.CompileProgram(v)
		if err != nil {
			return convertCompileError(err, "program."+label)
		}
		result.Programs = append(result.Programs, p)
		return nil
	}, mode)...)
	if failFast() {
		return result, errs
	}

	errs = append(errs, eachField(value, "hardware", func(label string, v cue.Value) error {
		hw, err := compiler.CompileHardware(v)
		if err != nil {
			return convertCompileError(err, "hardware."+label)
		}
		result.Hardware = append(result.Hardware, hw)
		return nil
	}, mode)...)
	if failFast() {
		return result, errs
	}

	errs = append(errs, eachField(value, "budget", func(label string, v cue.Value) error {
		b, err := compiler.CompileBudget(v)
		if err != nil {
			return convertCompileError(err, "budget."+label)
		}
		result.Budgets = append(result.Budgets, b)
		return nil
	}, mode)...)
	if failFast() {
		return result, errs
	}

	est, err := compiler.CompileEstimator(value.LookupPath(cue.ParsePath("estimator")))
	if err != nil {
		errs = append(errs, convertCompileError(err, "estimator"))
	} else {
		result.Estimator = est
	}

	if len(result.Programs) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoPrograms, Message: "no programs found in specs"})
	}
	return result, errs
}

// buildValue locates the CUE files under dir and builds their instance.
func buildValue(dir string) (cue.Value, int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}
	}
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}
	}
	if !info.IsDir() {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, len(cueFiles), nil
}

// eachField calls fn for every field of the struct at path. A missing
// struct is not an error.
func eachField(value cue.Value, path string, fn func(label string, v cue.Value) error, mode LoadMode) []error {
	v := value.LookupPath(cue.ParsePath(path))
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating %s: %v", path, err), Pos: v.Pos()}}
	}
	var errs []error
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				break
			}
		}
	}
	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoPrograms  = "E007" // No program declared
	ErrCodeUnknownName = "E008" // --program/--hardware/--budget names nothing
	ErrCodeAmbiguous   = "E009" // several candidates and no selection flag
	ErrCodeStore       = "E010" // history database error
	ErrCodeDecoder     = "E011" // decoder model unreadable

	// Estimate failures
	ErrCodeEstimate         = "E200" // estimator rejected the request
	ErrCodeInvalidProgram   = "E201"
	ErrCodeInvalidBudget    = "E202"
	ErrCodeNoViableDistance = "E203"
)

// MapFieldToErrorCode maps a compiler error field to a validation code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "subroutines":
		return compiler.ErrProgramNoSubroutines
	case field == "steps":
		return compiler.ErrProgramEmptySchedule
	case strings.HasPrefix(field, "subroutines."):
		return compiler.ErrInvalidCircuit
	case strings.HasPrefix(field, "schedule"):
		return compiler.ErrUnknownSubroutine
	case field == "physical_qubit_error_rate", strings.HasPrefix(field, "hardware."):
		return compiler.ErrErrorRateRange
	case field == "cycle_time":
		return compiler.ErrCycleTime
	case field == "total", strings.HasPrefix(field, "budget."):
		return compiler.ErrBudgetTotal
	default:
		return ErrCodeGeneric
	}
}

// selectProgram returns the program called name, or the only program when
// name is empty.
func (r *LoadResult) selectProgram(name string) (ir.Program, *LoadError) {
	if name == "" {
		if len(r.Programs) == 1 {
			return r.Programs[0], nil
		}
		return ir.Program{}, &LoadError{Code: ErrCodeAmbiguous, Message: fmt.Sprintf("%d programs declared; choose one with --program", len(r.Programs))}
	}
	for _, p := range r.Programs {
		if p.Name == name {
			return p, nil
		}
	}
	return ir.Program{}, &LoadError{Code: ErrCodeUnknownName, Message: fmt.Sprintf("program %q not found", name)}
}

// selectHardware resolves name against declared models first and built-in
// presets second. With no name and no declarations it uses basic_sc.
func (r *LoadResult) selectHardware(name string) (ir.HardwareModel, *LoadError) {
	if name == "" {
		switch len(r.Hardware) {
		case 0:
			return ir.BasicSC(), nil
		case 1:
			return r.Hardware[0], nil
		default:
			return ir.HardwareModel{}, &LoadError{Code: ErrCodeAmbiguous, Message: fmt.Sprintf("%d hardware models declared; choose one with --hardware", len(r.Hardware))}
		}
	}
	for _, hw := range r.Hardware {
		if hw.Name == name {
			return hw, nil
		}
	}
	if hw, ok := ir.Preset(name); ok {
		return hw, nil
	}
	return ir.HardwareModel{}, &LoadError{
		Code:    ErrCodeUnknownName,
		Message: fmt.Sprintf("hardware %q not found (presets: %s)", name, strings.Join(ir.PresetNames(), ", ")),
	}
}

// defaultBudgetTotal is used when a spec declares no budget.
const defaultBudgetTotal = 1e-3

// selectBudget returns the budget called name, or the only budget when
// name is empty. With no declarations the total is split evenly.
func (r *LoadResult) selectBudget(name string) (compiler.NamedBudget, *LoadError) {
	if name == "" {
		switch len(r.Budgets) {
		case 0:
			b, err := budget.Default(defaultBudgetTotal)
			if err != nil {
				return compiler.NamedBudget{}, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
			}
			return compiler.NamedBudget{Name: "default", Budget: b}, nil
		case 1:
			return r.Budgets[0], nil
		default:
			return compiler.NamedBudget{}, &LoadError{Code: ErrCodeAmbiguous, Message: fmt.Sprintf("%d budgets declared; choose one with --budget", len(r.Budgets))}
		}
	}
	for _, b := range r.Budgets {
		if b.Name == name {
			return b, nil
		}
	}
	return compiler.NamedBudget{}, &LoadError{Code: ErrCodeUnknownName, Message: fmt.Sprintf("budget %q not found", name)}
}
