package ir

import (
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface over the types that canonical JSON accepts.
// There is no float member: floats are carried as strings (see Float).
type Value interface {
	value()
}

// String is a canonical string value.
type String string

func (String) value() {}

// Int is a canonical integer value.
type Int int64

func (Int) value() {}

// Bool is a canonical boolean value.
type Bool bool

func (Bool) value() {}

// Array is an ordered list of values.
type Array []Value

func (Array) value() {}

// Object maps keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Float encodes f as its shortest round-trip decimal string.
// 1e-3 becomes "0.001", 4.5e-8 becomes "4.5e-08".
func Float(f float64) String {
	return String(strconv.FormatFloat(f, 'g', -1, 64))
}

// Ints converts a slice of ints to an Array.
func Ints(xs []int) Array {
	arr := make(Array, len(xs))
	for i, x := range xs {
		arr[i] = Int(x)
	}
	return arr
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units, not UTF-8 bytes).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
