package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qre/internal/decoder"
	"github.com/roach88/qre/internal/engine"
	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/store"
)

// EstimateOptions holds flags for the estimate command.
type EstimateOptions struct {
	*RootOptions
	Program            string
	Hardware           string
	Budget             string
	Optimization       string
	Decoder            string
	DecoderMaxDistance int
	DBPath             string
}

// EstimateOutput is the payload of a successful estimate.
type EstimateOutput struct {
	ID       string          `json:"id,omitempty"`
	Inserted bool            `json:"inserted,omitempty"`
	Budget   string          `json:"budget"`
	Result   ir.ResourceInfo `json:"result"`
}

// NewEstimateCommand creates the estimate command.
func NewEstimateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EstimateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "estimate <specs-dir>",
		Short: "Estimate the resources of a program",
		Long: `Estimate the fault-tolerant resources of a program declared in CUE.

The spec directory declares programs, and optionally hardware models,
error budgets and estimator settings. Flags pick one of each when several
are declared; --hardware also accepts a built-in preset name.

With --db the result is recorded in a SQLite history keyed by the hash of
the request. Re-estimating an identical request keeps the first record.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Program, "program", "", "program to estimate (required when several are declared)")
	cmd.Flags().StringVar(&opts.Hardware, "hardware", "", "hardware model or preset name")
	cmd.Flags().StringVar(&opts.Budget, "budget", "", "error budget name")
	cmd.Flags().StringVar(&opts.Optimization, "optimization", "", "Space or Time (overrides the estimator block)")
	cmd.Flags().StringVar(&opts.Decoder, "decoder", "", "decoder model CSV")
	cmd.Flags().IntVar(&opts.DecoderMaxDistance, "decoder-max-distance", 0, "highest distance the decoder CSV covers (default: max distance)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "record the estimate in this SQLite database")

	return cmd
}

func runEstimate(ctx context.Context, opts *EstimateOptions, specsDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	program, lerr := loadResult.selectProgram(opts.Program)
	if lerr != nil {
		return formatter.fail(ExitCommandError, lerr.Code, lerr.Message)
	}
	hw, lerr := loadResult.selectHardware(opts.Hardware)
	if lerr != nil {
		return formatter.fail(ExitCommandError, lerr.Code, lerr.Message)
	}
	b, lerr := loadResult.selectBudget(opts.Budget)
	if lerr != nil {
		return formatter.fail(ExitCommandError, lerr.Code, lerr.Message)
	}

	spec := loadResult.Estimator
	if opts.Optimization != "" {
		mode, err := ir.ParseOptimization(opts.Optimization)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error())
		}
		spec.Optimization = mode
	}
	formatter.VerboseLog("Estimating %s on %s with budget %s (%s)", program.Name, hw.Name, b.Name, spec)

	estOpts := append(spec.Options(), engine.WithLogger(opts.Logger(formatter.GetErrWriter())))

	if opts.Decoder != "" {
		highest := opts.DecoderMaxDistance
		if highest == 0 {
			highest = spec.MaxDistance
		}
		if highest == 0 {
			highest = engine.DefaultLimits().MaxDistance
		}
		model, err := decoder.LoadCSV(opts.Decoder, highest)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDecoder, err.Error())
		}
		estOpts = append(estOpts, engine.WithDecoder(model))
	}

	var st *store.Store
	if opts.DBPath != "" {
		var err error
		st, err = store.Open(opts.DBPath)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, err.Error())
		}
		defer st.Close()
		seq, err := st.MaxSeq(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, err.Error())
		}
		estOpts = append(estOpts, engine.WithClock(engine.NewClockAt(seq)))
	}

	est := engine.NewGraphResourceEstimator(hw, estOpts...)
	res, err := est.Estimate(ctx, program, b.Budget)
	if err != nil {
		return formatter.fail(ExitFailure, estimateErrorCode(err), err.Error())
	}

	out := EstimateOutput{Budget: b.Name, Result: res}
	if st != nil {
		req := est.Request(program, b.Budget)
		id, err := ir.RequestID(req)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeGeneric, err.Error())
		}
		inserted, err := st.WriteEstimate(ctx, id, req, res)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeStore, err.Error())
		}
		out.ID, out.Inserted = id, inserted
		formatter.VerboseLog("Recorded estimate %s (inserted=%t)", id, inserted)
	}

	if formatter.Format == "json" {
		if err := json.NewEncoder(formatter.Writer).Encode(CLIResponse{Status: "ok", Data: out, RunToken: res.RunToken}); err != nil {
			return err
		}
	} else {
		writeEstimateText(formatter.Writer, out)
	}

	if res.IsNull() {
		return NewExitError(ExitFailure, fmt.Sprintf("no viable estimate for %s", program.Name))
	}
	return nil
}

// estimateErrorCode maps estimator errors to CLI codes.
func estimateErrorCode(err error) string {
	switch {
	case engine.IsInvalidProgram(err):
		return ErrCodeInvalidProgram
	case engine.IsInvalidBudget(err):
		return ErrCodeInvalidBudget
	case engine.IsNoViableDistance(err):
		return ErrCodeNoViableDistance
	default:
		return ErrCodeEstimate
	}
}

func writeEstimateText(w io.Writer, out EstimateOutput) {
	r := out.Result
	if r.IsNull() {
		fmt.Fprintf(w, "✗ No viable estimate for %s (%s)\n", r.Program, r.Optimization)
	} else {
		mode := string(r.Optimization)
		if out.Budget != "" {
			mode += ", budget " + out.Budget
		}
		fmt.Fprintf(w, "✓ Estimated %s on %s (%s)\n\n", r.Program, r.Hardware, mode)
		fmt.Fprintf(w, "  code distance:        %d\n", r.CodeDistance)
		fmt.Fprintf(w, "  logical error rate:   %s\n", rateText(r))
		fmt.Fprintf(w, "  logical qubits:       %d\n", r.NLogicalQubits)
		fmt.Fprintf(w, "  physical qubits:      %d\n", r.PhysicalQubits)
		if r.FactoryName != "" {
			fmt.Fprintf(w, "  factory:              %d x %s (%d qubits)\n", r.NFactories, r.FactoryName, r.FactoryPhysicalQubits)
			if fp := r.FactoryFootprint; fp != nil {
				fmt.Fprintf(w, "  factory footprint:    %d x %d tiles\n", fp.Width, fp.Height)
			}
		}
		fmt.Fprintf(w, "  total physical qubits: %d\n", r.TotalPhysicalQubits)
		fmt.Fprintf(w, "  cycles:               %d\n", r.TotalCycles)
		fmt.Fprintf(w, "  time:                 %.3e s\n", r.TotalTime)
		fmt.Fprintf(w, "  T gates / rotations:  %d / %d (%d T per rotation)\n", r.NTGates, r.NRotations, r.NTPerRotation)
		if r.Decoder != nil {
			fmt.Fprintf(w, "  decoder power/area:   %.3g / %.3g\n", r.Decoder.Power, r.Decoder.Area)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  %s: %s\n", warn.Code, warn.Message)
		}
	}
	if out.ID != "" {
		state := "recorded"
		if !out.Inserted {
			state = "already recorded"
		}
		fmt.Fprintf(w, "\n%s as %s\n", state, out.ID)
	}
}

func rateText(r ir.ResourceInfo) string {
	if r.LogicalErrorRateExact != "" {
		return r.LogicalErrorRateExact
	}
	return fmt.Sprintf("%g", r.LogicalErrorRate)
}

// outputLoadError reports the first spec loading error.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), msg)
		}
		return formatter.fail(ExitCommandError, loadErr.Code, msg)
	}
	return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error())
}
