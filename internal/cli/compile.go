package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/qre/internal/compiler"
	"github.com/roach88/qre/internal/engine"
	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/substrate"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // canonical program IR file
}

// SubroutineStats summarizes the graph state of one scheduled subroutine.
type SubroutineStats struct {
	Name         string `json:"name"`
	Multiplicity int    `json:"multiplicity"`
	Nodes        int    `json:"nodes"`
	Edges        int    `json:"edges"`
	MaxDegree    int    `json:"max_degree"`
	Steps        int    `json:"measurement_steps"`
	TGates       int    `json:"t_gates"`
	Rotations    int    `json:"rotations"`
}

// ProgramStats summarizes one compiled program.
type ProgramStats struct {
	Name        string            `json:"name"`
	Steps       int               `json:"steps"`
	Qubits      int               `json:"qubits"`
	TGates      int               `json:"t_gates"`
	Rotations   int               `json:"rotations"`
	Subroutines []SubroutineStats `json:"subroutines"`
}

// CompilationResult holds the statistics of every declared program.
type CompilationResult struct {
	Programs []ProgramStats `json:"programs"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile programs to graph states",
		Long: `Compile every declared program to graph states and report their size.

Each scheduled subroutine is lowered, built into a graph state and its
measurements are scheduled. With --output the canonical program IR is
written as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := &CompilationResult{}
	for _, p := range loadResult.Programs {
		formatter.VerboseLog("Compiling program: %s", p.Name)
		stats, err := compileStats(p)
		if err != nil {
			loadErrors = append(loadErrors, err)
			continue
		}
		result.Programs = append(result.Programs, stats)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	if opts.Output != "" {
		if err := writeIRToFile(loadResult.Programs, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// compileStats builds the graph states of p with the default scheduler.
func compileStats(p ir.Program) (ProgramStats, error) {
	cp, err := engine.CompileProgram(p, substrate.Greedy{})
	if err != nil {
		return ProgramStats{}, err
	}
	stats := ProgramStats{
		Name:      p.Name,
		Steps:     p.Steps,
		Qubits:    p.NumQubits(),
		TGates:    cp.TotalT(),
		Rotations: cp.TotalRotations(),
	}
	for _, part := range cp.Partitions {
		stats.Subroutines = append(stats.Subroutines, SubroutineStats{
			Name:         part.Name,
			Multiplicity: part.Multiplicity,
			Nodes:        part.Nodes,
			Edges:        part.Graph.EdgeCount(),
			MaxDegree:    part.MaxDegree,
			Steps:        part.Steps,
			TGates:       part.NumT,
			Rotations:    part.NumRotations,
		})
	}
	return stats, nil
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d program(s)\n\n", len(result.Programs))
	for _, p := range result.Programs {
		fmt.Fprintf(formatter.Writer, "%s: %d qubit(s), %d step(s), %d T, %d rotation(s)\n",
			p.Name, p.Qubits, p.Steps, p.TGates, p.Rotations)
		for _, s := range p.Subroutines {
			fmt.Fprintf(formatter.Writer, "  %s x%d: %d node(s), %d edge(s), degree %d, %d measurement step(s)\n",
				s.Name, s.Multiplicity, s.Nodes, s.Edges, s.MaxDegree, s.Steps)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical IR to %s\n", outputFile)
	}
	return nil
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.Indented(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var estErr *engine.EstimateError
	if errors.As(err, &estErr) {
		return compiler.ErrInvalidCircuit, estErr.Error()
	}
	return ErrCodeGeneric, err.Error()
}

// writeIRToFile writes the programs as a canonical JSON array.
func writeIRToFile(programs []ir.Program, filename string) error {
	arr := make(ir.Array, len(programs))
	for i, p := range programs {
		arr[i] = p.Canonical()
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
