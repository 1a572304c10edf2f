package engine

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Failure-rate arithmetic runs at 100 significant digits. Per-cell error
// rates reach 1e-100 at large distances and are multiplied by volumes in
// the billions, which float64 cannot hold without underflow.
var decimalCtx = apd.BaseContext.WithPrecision(100)

// Surface-code logical error model: cell(d) = d · c1 · (c2·p)^((d+1)/2).
const (
	cellPrefactor = "0.1"
	cellThreshold = 100
)

// cellErrorRate returns the logical error rate of one space-time cell at
// code distance d on hardware with physical error rate p.
func cellErrorRate(d int, p float64) (*apd.Decimal, error) {
	base, err := new(apd.Decimal).SetFloat64(p)
	if err != nil {
		return nil, fmt.Errorf("physical error rate %g: %w", p, err)
	}
	if _, err := decimalCtx.Mul(base, base, apd.New(cellThreshold, 0)); err != nil {
		return nil, err
	}
	pow := new(apd.Decimal)
	if _, err := decimalCtx.Pow(pow, base, apd.New(int64((d+1)/2), 0)); err != nil {
		return nil, err
	}
	prefactor, _, err := apd.NewFromString(cellPrefactor)
	if err != nil {
		return nil, err
	}
	out := new(apd.Decimal)
	if _, err := decimalCtx.Mul(out, apd.New(int64(d), 0), prefactor); err != nil {
		return nil, err
	}
	if _, err := decimalCtx.Mul(out, out, pow); err != nil {
		return nil, err
	}
	return out, nil
}

// totalErrorRate returns volume · cell.
func totalErrorRate(volume int, cell *apd.Decimal) (*apd.Decimal, error) {
	out := new(apd.Decimal)
	if _, err := decimalCtx.Mul(out, apd.New(int64(volume), 0), cell); err != nil {
		return nil, err
	}
	return out, nil
}

// lessThan reports whether x < f, comparing f exactly as a decimal.
func lessThan(x *apd.Decimal, f float64) bool {
	y, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		return false
	}
	return x.Cmp(y) < 0
}

// floatLess reports whether f < x, comparing f exactly as a decimal.
func floatLess(f float64, x *apd.Decimal) bool {
	y, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		return false
	}
	return y.Cmp(x) < 0
}

// toFloat converts x to the nearest float64; values below the float64
// range become 0.
func toFloat(x *apd.Decimal) float64 {
	f, err := x.Float64()
	if err != nil {
		return 0
	}
	return f
}

// exactString renders x without trailing zeros.
func exactString(x *apd.Decimal) string {
	reduced, _ := new(apd.Decimal).Reduce(x)
	return reduced.Text('G')
}
