package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DBPath       string
	ID           string
	Program      string
	Hardware     string
	Mode         string
	MaxDistance  int
	WarningsOnly bool
	Limit        int
}

// HistoryEntry is one listed estimate.
type HistoryEntry struct {
	ID     string          `json:"id"`
	Result ir.ResourceInfo `json:"result"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded estimates",
		Long: `List estimates recorded by "qre estimate --db" in the order they were made.

Filters combine: --program, --hardware and --mode match exactly,
--max-distance keeps estimates at or below a code distance and
--warnings-only keeps estimates that carry warnings. --id prints a single
estimate with its canonical request.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show one estimate by request id")
	cmd.Flags().StringVar(&opts.Program, "program", "", "filter by program name")
	cmd.Flags().StringVar(&opts.Hardware, "hardware", "", "filter by hardware model")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "filter by optimization (Space|Time)")
	cmd.Flags().IntVar(&opts.MaxDistance, "max-distance", 0, "keep estimates with code distance at most this")
	cmd.Flags().BoolVar(&opts.WarningsOnly, "warnings-only", false, "keep estimates with warnings")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of estimates (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.DBPath); os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DBPath))
	}

	filter := store.Filter{
		Program:      opts.Program,
		Hardware:     opts.Hardware,
		MaxDistance:  opts.MaxDistance,
		WarningsOnly: opts.WarningsOnly,
		Limit:        opts.Limit,
	}
	if opts.Mode != "" {
		mode, err := ir.ParseOptimization(opts.Mode)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error())
		}
		filter.Optimization = mode
	}
	if opts.Limit < 0 || opts.MaxDistance < 0 {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "--limit and --max-distance must not be negative")
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error())
	}
	defer st.Close()

	if opts.ID != "" {
		return showEstimate(ctx, formatter, st, opts.ID)
	}

	records, err := st.ListEstimates(ctx, filter)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeStore, err.Error())
	}
	formatter.VerboseLog("Found %d estimate(s) in %s", len(records), opts.DBPath)

	entries := make([]HistoryEntry, len(records))
	for i, rec := range records {
		entries[i] = HistoryEntry{ID: rec.ID, Result: rec.Result}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No estimates found.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%-5s  %-16s  %-12s  %-5s  %3s  %10s  %10s  %-10s  %s\n",
		"SEQ", "PROGRAM", "HARDWARE", "MODE", "D", "QUBITS", "TIME", "LER", "WARNINGS")
	for _, e := range entries {
		r := e.Result
		fmt.Fprintf(formatter.Writer, "%-5d  %-16s  %-12s  %-5s  %3d  %10d  %10.3e  %-10s  %d\n",
			r.Seq, r.Program, r.Hardware, r.Optimization, r.CodeDistance,
			r.TotalPhysicalQubits, r.TotalTime, rateText(r), len(r.Warnings))
	}
	return nil
}

func showEstimate(ctx context.Context, formatter *OutputFormatter, st *store.Store, id string) error {
	rec, err := st.ReadEstimate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeUnknownName, err.Error())
	}
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeStore, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(struct {
			ID      string          `json:"id"`
			Request string          `json:"request"`
			Result  ir.ResourceInfo `json:"result"`
		}{rec.ID, rec.Request, rec.Result})
	}

	writeEstimateText(formatter.Writer, EstimateOutput{ID: rec.ID, Inserted: true, Result: rec.Result})
	fmt.Fprintf(formatter.Writer, "\nrequest: %s\n", rec.Request)
	return nil
}
