package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/qre/internal/compiler"
	"github.com/roach88/qre/internal/decoder"
	"github.com/roach88/qre/internal/engine"
	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/store"
	"github.com/roach88/qre/internal/testutil"
)

// Harness runs one scenario's steps against a shared clock and history.
type Harness struct {
	store   *store.Store
	hw      ir.HardwareModel
	program ir.Program
	limits  engine.Limits
	shots   int
	decoder *decoder.Model
	clock   *engine.Clock
	tokens  engine.TokenGenerator
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. Run tokens are fixed
// and seq starts at 1, so identical scenarios yield identical traces.
//
// An error is returned only when the scenario cannot be set up; failed
// expectations and assertions are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}
	defer h.store.Close()

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, scenario, step, result); err != nil {
			result.AddError(fmt.Sprintf("steps[%d] %q: %v", i, step.Name, err))
		}
	}

	actx := &AssertionContext{Store: h.store, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(s *Scenario) (*Harness, error) {
	hw, err := s.Hardware.Model()
	if err != nil {
		return nil, fmt.Errorf("hardware: %w", err)
	}
	program, err := buildProgram(s.Program)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}

	limits := engine.DefaultLimits()
	if s.Estimator.MaxDistance > 0 {
		limits.MaxDistance = s.Estimator.MaxDistance
	}
	if s.Estimator.MaxSynthesisRetries > 0 {
		limits.MaxSynthesisRetries = s.Estimator.MaxSynthesisRetries
	}
	if s.Estimator.PrecisionFloor > 0 {
		limits.PrecisionFloor = s.Estimator.PrecisionFloor
	}

	var model *decoder.Model
	if s.Estimator.Decoder != "" {
		highest := s.Estimator.DecoderMaxDistance
		if highest == 0 {
			highest = limits.MaxDistance
		}
		if model, err = decoder.LoadCSV(s.Estimator.Decoder, highest); err != nil {
			return nil, fmt.Errorf("decoder: %w", err)
		}
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	return &Harness{
		store:   st,
		hw:      hw,
		program: program,
		limits:  limits,
		shots:   s.Estimator.Shots,
		decoder: model,
		clock:   engine.NewClock(),
		tokens:  testutil.NewFixedTokenGenerator(s.RunToken),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// buildProgram parses each subroutine and runs them in declaration order,
// Steps times.
func buildProgram(spec ProgramSpec) (ir.Program, error) {
	p := ir.Program{Name: spec.Name, Steps: spec.Steps}
	if p.Steps == 0 {
		p.Steps = 1
	}
	body := make([]int, 0, len(spec.Subroutines))
	for i, sub := range spec.Subroutines {
		c, err := compiler.ParseQASM(sub.Name, sub.QASM)
		if err != nil {
			return ir.Program{}, fmt.Errorf("subroutine %q: %w", sub.Name, err)
		}
		p.Subroutines = append(p.Subroutines, c)
		body = append(body, i)
	}
	p.Schedule = ir.RepeatSchedule(nil, body, nil)
	if err := p.Validate(); err != nil {
		return ir.Program{}, err
	}
	return p, nil
}

func (h *Harness) estimator(mode ir.Optimization) *engine.GraphResourceEstimator {
	opts := []engine.Option{
		engine.WithOptimization(mode),
		engine.WithLimits(h.limits),
		engine.WithClock(h.clock),
		engine.WithTokenGenerator(h.tokens),
		engine.WithLogger(h.logger),
	}
	if h.shots > 0 {
		opts = append(opts, engine.WithShots(h.shots))
	}
	if h.decoder != nil {
		opts = append(opts, engine.WithDecoder(h.decoder))
	}
	return engine.NewGraphResourceEstimator(h.hw, opts...)
}

// executeStep runs one estimate, records it and checks its expect clause.
func (h *Harness) executeStep(ctx context.Context, s *Scenario, step Step, result *Result) error {
	mode, err := ir.ParseOptimization(step.Optimization)
	if err != nil {
		return err
	}
	spec := s.Budget
	if step.Budget != nil {
		spec = *step.Budget
	}
	b, err := spec.Resolve()
	if err != nil {
		return fmt.Errorf("budget: %w", err)
	}

	est := h.estimator(mode)
	res, err := est.Estimate(ctx, h.program, b)
	if err != nil {
		return err
	}

	req := est.Request(h.program, b)
	id, err := ir.RequestID(req)
	if err != nil {
		return fmt.Errorf("request id: %w", err)
	}
	inserted, err := h.store.WriteEstimate(ctx, id, req, res)
	if err != nil {
		return err
	}

	result.AddTrace(TraceEvent{Step: step.Name, RequestID: id, Inserted: inserted, Result: res})
	h.logger.Info("step completed",
		"step", step.Name,
		"request_id", id,
		"code_distance", res.CodeDistance,
		"inserted", inserted,
	)

	if len(step.Expect) == 0 {
		return nil
	}
	fields, err := resultFields(res)
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(step.Expect) {
		actual, ok := fields[key]
		if !ok {
			result.AddError(fmt.Sprintf("step %q: expected field %q is absent", step.Name, key))
			continue
		}
		if !valuesEqual(actual, step.Expect[key]) {
			result.AddError(fmt.Sprintf("step %q: %s = %v, want %v", step.Name, key, actual, step.Expect[key]))
		}
	}
	return nil
}
