package ir

import (
	"errors"
	"fmt"
	"slices"
)

// ScheduleFunc maps a step count to the sequence of subroutine indices
// executed by the program. It must be pure.
type ScheduleFunc func(steps int) []int

// Program is a list of subroutines plus a repetition schedule.
// All subroutines act on the same number of data qubits.
type Program struct {
	Name        string
	Subroutines []Circuit
	Steps       int
	Schedule    ScheduleFunc
}

// RepeatSchedule returns a schedule of prefix, then body repeated steps
// times, then suffix.
func RepeatSchedule(prefix, body, suffix []int) ScheduleFunc {
	prefix, body, suffix = slices.Clone(prefix), slices.Clone(body), slices.Clone(suffix)
	return func(steps int) []int {
		seq := make([]int, 0, len(prefix)+steps*len(body)+len(suffix))
		seq = append(seq, prefix...)
		for i := 0; i < steps; i++ {
			seq = append(seq, body...)
		}
		return append(seq, suffix...)
	}
}

// NewSingleCircuitProgram wraps one circuit as a program run once.
func NewSingleCircuitProgram(c Circuit) Program {
	return Program{
		Name:        c.Name,
		Subroutines: []Circuit{c},
		Steps:       1,
		Schedule:    RepeatSchedule(nil, []int{0}, nil),
	}
}

// NumQubits returns the shared data-qubit count, or 0 for an empty program.
func (p Program) NumQubits() int {
	if len(p.Subroutines) == 0 {
		return 0
	}
	return p.Subroutines[0].NumQubits
}

// Validate checks the subroutines, the shared qubit count and that the
// schedule only names existing subroutines.
func (p Program) Validate() error {
	if len(p.Subroutines) == 0 {
		return fmt.Errorf("program %q: no subroutines", p.Name)
	}
	if p.Schedule == nil {
		return fmt.Errorf("program %q: no schedule", p.Name)
	}
	if p.Steps < 0 {
		return fmt.Errorf("program %q: negative step count %d", p.Name, p.Steps)
	}
	n := p.Subroutines[0].NumQubits
	var errs []error
	for i, c := range p.Subroutines {
		if c.NumQubits != n {
			errs = append(errs, fmt.Errorf("program %q: subroutine %d acts on %d qubits, expected %d", p.Name, i, c.NumQubits, n))
		}
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, idx := range p.Sequence() {
		if idx < 0 || idx >= len(p.Subroutines) {
			errs = append(errs, fmt.Errorf("program %q: schedule references subroutine %d of %d", p.Name, idx, len(p.Subroutines)))
			break
		}
	}
	return errors.Join(errs...)
}

// Sequence returns the unrolled subroutine index sequence.
func (p Program) Sequence() []int {
	if p.Schedule == nil {
		return nil
	}
	return p.Schedule(p.Steps)
}

// Multiplicities counts how many times each subroutine index is executed.
func (p Program) Multiplicities() map[int]int {
	m := make(map[int]int)
	for _, idx := range p.Sequence() {
		m[idx]++
	}
	return m
}

// NumTGates returns the T and TDG count over the unrolled sequence.
func (p Program) NumTGates() int {
	return p.weighted(Circuit.CountT)
}

// NumRotations returns the rotation-gate count over the unrolled sequence.
func (p Program) NumRotations() int {
	return p.weighted(Circuit.CountRotations)
}

// NumTwoQubitGates returns the two-qubit gate count over the unrolled sequence.
func (p Program) NumTwoQubitGates() int {
	return p.weighted(Circuit.CountTwoQubit)
}

func (p Program) weighted(count func(Circuit) int) int {
	total := 0
	for idx, m := range p.Multiplicities() {
		if idx >= 0 && idx < len(p.Subroutines) {
			total += m * count(p.Subroutines[idx])
		}
	}
	return total
}

// WithSubroutines returns a copy of p with its subroutines replaced.
// The schedule and step count are shared.
func (p Program) WithSubroutines(subs []Circuit) Program {
	p.Subroutines = slices.Clone(subs)
	return p
}

// Canonical returns the program as a canonical-JSON object. The schedule
// is captured through its unrolled sequence.
func (p Program) Canonical() Object {
	subs := make(Array, len(p.Subroutines))
	for i, c := range p.Subroutines {
		subs[i] = c.Canonical()
	}
	return Object{
		"name":        String(p.Name),
		"steps":       Int(p.Steps),
		"subroutines": subs,
		"sequence":    Ints(p.Sequence()),
	}
}
