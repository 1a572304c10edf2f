package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
)

// label returns the last path selector of v, unquoted.
func label(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return strings.Trim(sels[len(sels)-1].String(), `"`)
}

// lookupFloat reads an optional number field. Integers are accepted.
func lookupFloat(v cue.Value, field string, def float64) (float64, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return def, nil
	}
	x, err := f.Float64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: fmt.Sprintf("must be a number: %v", err), Pos: f.Pos()}
	}
	return x, nil
}

// requireFloat reads a mandatory number field.
func requireFloat(v cue.Value, field string) (float64, error) {
	if !v.LookupPath(cue.ParsePath(field)).Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	return lookupFloat(v, field, 0)
}

// lookupInt reads an optional integer field.
func lookupInt(v cue.Value, field string, def int) (int, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return def, nil
	}
	x, err := f.Int64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: fmt.Sprintf("must be an integer: %v", err), Pos: f.Pos()}
	}
	return int(x), nil
}

// lookupString reads an optional string field.
func lookupString(v cue.Value, field, def string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return def, nil
	}
	s, err := f.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: fmt.Sprintf("must be a string: %v", err), Pos: f.Pos()}
	}
	return s, nil
}

// lookupStrings reads an optional list of strings. ok is false when the
// field is absent.
func lookupStrings(v cue.Value, field string) (out []string, ok bool, err error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, false, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, true, &CompileError{Field: field, Message: "must be a list of strings", Pos: f.Pos()}
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, true, &CompileError{Field: field, Message: "must be a list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, true, nil
}
