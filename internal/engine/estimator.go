package engine

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/qre/internal/budget"
	"github.com/roach88/qre/internal/decoder"
	"github.com/roach88/qre/internal/factory"
	"github.com/roach88/qre/internal/ir"
	"github.com/roach88/qre/internal/substrate"
)

// FactorySource yields magic-state factories in the order the solver
// should try them.
type FactorySource interface {
	All(mode ir.Optimization) iter.Seq[ir.MagicStateFactory]
}

// Gate-synthesis scaling law: a rotation synthesized to accuracy ε costs
// ceil(scaling·log2(1/ε) + offset) T gates.
const (
	DefaultSynthesisScaling = 0.53
	DefaultSynthesisOffset  = 4.86
	DefaultShots            = 1
)

// surfaceCodeCycle is the number of physical operation layers per code cycle.
const surfaceCodeCycle = 6

// GraphResourceEstimator searches code distance, factory and synthesis
// precision for a program compiled to graph states.
//
// Each Estimate call compiles its own partitions, so one estimator can be
// reused across programs and budgets.
type GraphResourceEstimator struct {
	hw        ir.HardwareModel
	mode      ir.Optimization
	catalog   FactorySource
	scheduler substrate.Scheduler
	decoder   *decoder.Model
	limits    Limits
	shots     int
	scaling   float64
	offset    float64
	logger    *slog.Logger
	clock     *Clock
	tokens    TokenGenerator
}

// Option configures a GraphResourceEstimator.
type Option func(*GraphResourceEstimator)

// WithOptimization selects Space or Time optimization. Default: Space.
func WithOptimization(mode ir.Optimization) Option {
	return func(e *GraphResourceEstimator) {
		e.mode = mode
	}
}

// WithCatalog replaces the hardware-derived factory catalog.
func WithCatalog(c FactorySource) Option {
	return func(e *GraphResourceEstimator) {
		e.catalog = c
	}
}

// WithScheduler replaces the greedy measurement scheduler.
func WithScheduler(s substrate.Scheduler) Option {
	return func(e *GraphResourceEstimator) {
		e.scheduler = s
	}
}

// WithDecoder attaches a decoder model for the feasibility pass.
func WithDecoder(m *decoder.Model) Option {
	return func(e *GraphResourceEstimator) {
		e.decoder = m
	}
}

// WithLimits replaces the search bounds.
func WithLimits(l Limits) Option {
	return func(e *GraphResourceEstimator) {
		e.limits = l
	}
}

// WithShots sets how many times the program is executed.
func WithShots(n int) Option {
	return func(e *GraphResourceEstimator) {
		e.shots = n
	}
}

// WithSynthesis overrides the gate-synthesis scaling law.
func WithSynthesis(scaling, offset float64) Option {
	return func(e *GraphResourceEstimator) {
		e.scaling = scaling
		e.offset = offset
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *GraphResourceEstimator) {
		e.logger = l
	}
}

// WithClock sets the logical clock used to stamp results.
func WithClock(c *Clock) Option {
	return func(e *GraphResourceEstimator) {
		e.clock = c
	}
}

// WithTokenGenerator sets the run-token generator. Default: UUIDv7.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *GraphResourceEstimator) {
		e.tokens = g
	}
}

// NewGraphResourceEstimator creates an estimator for hardware hw.
func NewGraphResourceEstimator(hw ir.HardwareModel, opts ...Option) *GraphResourceEstimator {
	e := &GraphResourceEstimator{
		hw:        hw,
		mode:      ir.Space,
		scheduler: substrate.Greedy{},
		limits:    DefaultLimits(),
		shots:     DefaultShots,
		scaling:   DefaultSynthesisScaling,
		offset:    DefaultSynthesisOffset,
		logger:    slog.Default(),
		clock:     NewClock(),
		tokens:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = factory.NewCatalog(hw.PhysicalQubitErrorRate)
	}
	return e
}

// Mode returns the optimization mode.
func (e *GraphResourceEstimator) Mode() ir.Optimization {
	return e.mode
}

// Hardware returns the hardware model.
func (e *GraphResourceEstimator) Hardware() ir.HardwareModel {
	return e.hw
}

// attempt is the outcome of one pass at a fixed synthesis tolerance.
type attempt struct {
	tolerance float64
	perRot    int
	volume    int
	distance  int
	cell      *apd.Decimal
	ler       *apd.Decimal
	factory   *ir.MagicStateFactory
}

// Estimate runs the full search for program under budget b.
//
// Fatal errors: invalid program or budget, unsupported gates, and
// NoViableDistanceError. An exhausted factory catalog returns the null
// result with a warning instead.
func (e *GraphResourceEstimator) Estimate(ctx context.Context, program ir.Program, b budget.ErrorBudget) (ir.ResourceInfo, error) {
	if err := program.Validate(); err != nil {
		return ir.ResourceInfo{}, NewInvalidProgramError(program.Name, err)
	}
	if err := e.hw.Validate(); err != nil {
		return ir.ResourceInfo{}, fmt.Errorf("estimate %s: %w", program.Name, err)
	}
	if err := e.limits.Validate(); err != nil {
		return ir.ResourceInfo{}, fmt.Errorf("estimate %s: %w", program.Name, err)
	}
	if e.mode != ir.Space && e.mode != ir.Time {
		return ir.ResourceInfo{}, fmt.Errorf("estimate %s: invalid optimization %q", program.Name, e.mode)
	}

	compiled, err := CompileProgram(program, e.scheduler)
	if err != nil {
		return ir.ResourceInfo{}, err
	}
	nT, nRot := compiled.TotalT(), compiled.TotalRotations()

	if b.ErrorCorrection <= 0 {
		return ir.ResourceInfo{}, NewInvalidBudgetError(program.Name, "error-correction share must be positive")
	}
	if nRot > 0 && b.Synthesis <= 0 {
		return ir.ResourceInfo{}, NewInvalidBudgetError(program.Name,
			fmt.Sprintf("program has %d rotations but no synthesis budget", nRot))
	}

	e.logger.Debug("compiled program",
		"program", program.Name,
		"partitions", len(compiled.Partitions),
		"t_gates", nT,
		"rotations", nRot)

	var warnings []ir.Warning
	quota := newRetryQuota(e.limits.MaxSynthesisRetries)
	tolerance := b.Synthesis
	var best *attempt

	for {
		if err := ctx.Err(); err != nil {
			return ir.ResourceInfo{}, err
		}

		exhausted := false
		if nRot > 0 {
			if !quota.Next() {
				warnings = append(warnings, e.warn(ir.WarnSynthesisNotConverged,
					fmt.Sprintf("synthesis tolerance did not converge after %d attempts", quota.Used()),
					"program", program.Name, "tolerance", tolerance))
				break
			}
			// Attempt i runs at Synthesis/10^(i-1).
			next := b.Synthesis / math.Pow10(quota.Used()-1)
			if next < e.limits.PrecisionFloor {
				exhausted = true
				warnings = append(warnings, e.warn(ir.WarnPrecisionExhausted,
					fmt.Sprintf("synthesis tolerance %g is below the precision floor %g", next, e.limits.PrecisionFloor),
					"program", program.Name, "tolerance", next))
				if best != nil {
					break
				}
			}
			tolerance = next
		}

		a, err := e.solve(compiled, nT, nRot, tolerance, b)
		if err != nil {
			return ir.ResourceInfo{}, err
		}
		if a == nil {
			w := e.warn(ir.WarnNoViableFactory,
				"no magic-state factory is dominated by the logical error rate",
				"program", program.Name, "hardware", e.hw.Name)
			res := ir.NullResult(program.Name, e.mode, w)
			res.Hardware = e.hw.Name
			res.Warnings = append(warnings, res.Warnings...)
			return e.stamp(res), nil
		}
		best = a

		if nRot == 0 || exhausted || e.converged(a, nT, nRot) {
			break
		}
		e.logger.Debug("tightening synthesis tolerance",
			"program", program.Name,
			"tolerance", tolerance,
			"code_distance", a.distance)
	}

	res := e.result(program.Name, compiled, best, nT, nRot)
	res.Warnings = append(warnings, res.Warnings...)
	e.logger.Info("estimate complete",
		"program", program.Name,
		"optimization", string(e.mode),
		"code_distance", res.CodeDistance,
		"logical_qubits", res.NLogicalQubits,
		"physical_qubits", res.TotalPhysicalQubits,
		"total_time", res.TotalTime,
		"factory", res.FactoryName)
	return e.stamp(res), nil
}

// converged reports whether synthesis error can no longer dominate: either
// T gates make up nearly all non-Clifford gates, or the synthesis tolerance
// is already at or below the logical cell error rate.
func (e *GraphResourceEstimator) converged(a *attempt, nT, nRot int) bool {
	if float64(nT)/float64(nT+nRot) >= e.limits.TDominance {
		return true
	}
	return !lessThan(a.cell, a.tolerance)
}

// solve finds the minimum distance and the first acceptable factory at a
// fixed synthesis tolerance. It returns nil when T states are needed but
// every factory's distilled error rate exceeds the cell error rate.
func (e *GraphResourceEstimator) solve(c *CompiledProgram, nT, nRot int, tolerance float64, b budget.ErrorBudget) (*attempt, error) {
	k := e.tPerRotation(nRot, tolerance)
	volume := c.Volume(e.mode, k)
	d, cell, ler, err := e.minDistance(c.Program, volume, b.ErrorCorrection)
	if err != nil {
		return nil, err
	}
	a := &attempt{tolerance: tolerance, perRot: k, volume: volume, distance: d, cell: cell, ler: ler}

	if nT+nRot*k == 0 {
		return a, nil
	}
	for f := range e.catalog.All(e.mode) {
		if floatLess(f.DistilledErrorRate, cell) {
			e.logger.Debug("factory accepted",
				"factory", f.Name,
				"distilled_error_rate", f.DistilledErrorRate,
				"code_distance", d)
			a.factory = &f
			return a, nil
		}
		e.logger.Debug("factory rejected",
			"factory", f.Name,
			"distilled_error_rate", f.DistilledErrorRate,
			"code_distance", d)
	}
	return nil, nil
}

// tPerRotation applies the synthesis scaling law with the tolerance shared
// equally by all rotations.
func (e *GraphResourceEstimator) tPerRotation(nRot int, tolerance float64) int {
	if nRot == 0 {
		return 0
	}
	acc := budget.PerRotation(tolerance, nRot)
	return int(math.Ceil(e.scaling*math.Log2(1/acc) + e.offset))
}

// minDistance returns the smallest odd distance whose total logical error
// rate is below target.
func (e *GraphResourceEstimator) minDistance(program string, volume int, target float64) (int, *apd.Decimal, *apd.Decimal, error) {
	for d := e.limits.MinDistance; d < e.limits.MaxDistance; d += 2 {
		cell, err := cellErrorRate(d, e.hw.PhysicalQubitErrorRate)
		if err != nil {
			return 0, nil, nil, err
		}
		ler, err := totalErrorRate(volume, cell)
		if err != nil {
			return 0, nil, nil, err
		}
		if lessThan(ler, target) {
			return d, cell, ler, nil
		}
	}
	return 0, nil, nil, &NoViableDistanceError{
		Program:     program,
		Volume:      volume,
		Target:      target,
		MaxDistance: e.limits.MaxDistance,
	}
}

// result prices the accepted attempt.
func (e *GraphResourceEstimator) result(program string, c *CompiledProgram, a *attempt, nT, nRot int) ir.ResourceInfo {
	d := a.distance
	nLogical := c.LogicalQubits(e.mode, a.factory)

	cycles, nFactories := 0, 0
	for _, p := range c.Partitions {
		sub := 0
		for _, layer := range p.Schedule.Layers {
			lc := costLayer(e.mode, d, layerDemand(layer, p.Items, a.perRot), a.factory)
			sub += lc.cycles
			if a.factory != nil && lc.rounds > 0 {
				need := 1
				if e.mode == ir.Time {
					need = (lc.maxConsumed + a.factory.OutputPerRun - 1) / a.factory.OutputPerRun
				}
				nFactories = max(nFactories, need)
			}
		}
		cycles += p.Multiplicity * sub
	}

	res := ir.ResourceInfo{
		Program:               program,
		Hardware:              e.hw.Name,
		Optimization:          e.mode,
		CodeDistance:          d,
		LogicalErrorRate:      toFloat(a.ler),
		LogicalErrorRateExact: exactString(a.ler),
		NLogicalQubits:        nLogical,
		PhysicalQubits:        2 * d * d * nLogical,
		TotalCycles:           cycles,
		TotalTime:             surfaceCodeCycle * e.hw.CycleTime * float64(cycles) * float64(e.shots),
		NShots:                e.shots,
		NFactories:            nFactories,
		NTGates:               nT,
		NRotations:            nRot,
		NTPerRotation:         a.perRot,
		SpaceTimeVolume:       a.volume,
	}
	if nRot > 0 {
		res.SynthesisTolerance = a.tolerance
	}
	if a.factory != nil {
		res.FactoryName = a.factory.Name
		fp := a.factory.Footprint
		res.FactoryFootprint = &fp
		res.FactoryPhysicalQubits = nFactories * a.factory.PhysicalQubits
	}
	res.TotalPhysicalQubits = res.PhysicalQubits + res.FactoryPhysicalQubits

	if e.decoder != nil {
		info, w := e.decoder.Check(d, nLogical, a.volume, e.hw.CycleTime, e.limits.MaxDistance, e.logger)
		res.Decoder = info
		if w != nil {
			res.Warnings = append(res.Warnings, *w)
		}
	}
	return res
}

// warn logs a recovered condition and returns it as a result warning.
func (e *GraphResourceEstimator) warn(code, message string, attrs ...any) ir.Warning {
	e.logger.Warn(message, append([]any{"code", code}, attrs...)...)
	return ir.Warning{Code: code, Message: message}
}

// stamp tags a result with a run token and sequence number.
func (e *GraphResourceEstimator) stamp(res ir.ResourceInfo) ir.ResourceInfo {
	res.RunToken = e.tokens.Generate()
	res.Seq = e.clock.Next()
	return res
}
