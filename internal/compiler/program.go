package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/qre/internal/ir"
)

// CompileProgram parses a CUE value into an ir.Program.
//
// The CUE value should be the program struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`program: trotter: { ... }`)
//	p, err := CompileProgram(v.LookupPath(cue.ParsePath("program.trotter")))
//
// Subroutines keep their declaration order. The schedule names them:
// prefix runs once, body runs steps times, suffix runs once. Without a
// schedule the body is every subroutine in order.
func CompileProgram(v cue.Value) (ir.Program, error) {
	if err := v.Err(); err != nil {
		return ir.Program{}, formatCUEError(err)
	}

	p := ir.Program{Name: label(v)}

	steps, err := lookupInt(v, "steps", 1)
	if err != nil {
		return ir.Program{}, err
	}
	if steps < 0 {
		return ir.Program{}, &CompileError{Field: "steps", Message: "steps must not be negative", Pos: v.LookupPath(cue.ParsePath("steps")).Pos()}
	}
	p.Steps = steps

	decompose := false
	if f := v.LookupPath(cue.ParsePath("decompose_swaps")); f.Exists() {
		if decompose, err = f.Bool(); err != nil {
			return ir.Program{}, &CompileError{Field: "decompose_swaps", Message: "must be a bool", Pos: f.Pos()}
		}
	}

	subsVal := v.LookupPath(cue.ParsePath("subroutines"))
	if !subsVal.Exists() {
		return ir.Program{}, &CompileError{Field: "subroutines", Message: "at least one subroutine is required", Pos: v.Pos()}
	}
	iter, err := subsVal.Fields()
	if err != nil {
		return ir.Program{}, formatCUEError(err)
	}
	index := make(map[string]int)
	for iter.Next() {
		name := iter.Label()
		c, err := compileSubroutine(name, iter.Value())
		if err != nil {
			return ir.Program{}, err
		}
		if decompose {
			c = Nativize(c)
		}
		index[name] = len(p.Subroutines)
		p.Subroutines = append(p.Subroutines, c)
	}
	if len(p.Subroutines) == 0 {
		return ir.Program{}, &CompileError{Field: "subroutines", Message: "at least one subroutine is required", Pos: subsVal.Pos()}
	}

	p.Schedule, err = compileSchedule(v, index, len(p.Subroutines))
	if err != nil {
		return ir.Program{}, err
	}
	return p, nil
}

// compileSubroutine reads `qasm: """..."""`.
func compileSubroutine(name string, v cue.Value) (ir.Circuit, error) {
	field := fmt.Sprintf("subroutines.%s.qasm", name)
	src, err := lookupString(v, "qasm", "")
	if err != nil {
		return ir.Circuit{}, err
	}
	if src == "" {
		return ir.Circuit{}, &CompileError{Field: field, Message: "qasm source is required", Pos: v.Pos()}
	}
	c, err := ParseQASM(name, src)
	if err != nil {
		return ir.Circuit{}, &CompileError{Field: field, Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("qasm")).Pos()}
	}
	return c, nil
}

func compileSchedule(v cue.Value, index map[string]int, n int) (ir.ScheduleFunc, error) {
	sv := v.LookupPath(cue.ParsePath("schedule"))
	if !sv.Exists() {
		body := make([]int, n)
		for i := range body {
			body[i] = i
		}
		return ir.RepeatSchedule(nil, body, nil), nil
	}

	var parts [3][]int
	for i, field := range []string{"prefix", "body", "suffix"} {
		names, _, err := lookupStrings(sv, field)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			idx, ok := index[name]
			if !ok {
				return nil, &CompileError{
					Field:   "schedule." + field,
					Message: fmt.Sprintf("unknown subroutine %q", name),
					Pos:     sv.LookupPath(cue.ParsePath(field)).Pos(),
				}
			}
			parts[i] = append(parts[i], idx)
		}
	}
	return ir.RepeatSchedule(parts[0], parts[1], parts[2]), nil
}
