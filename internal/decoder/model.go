// Package decoder models the classical decoder that must keep pace with
// the surface code and reports its power, area and energy.
package decoder

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/qre/internal/ir"
)

// Fit is a fitted cost curve over code distance.
type Fit struct {
	// Base is the value measured at distance 26; it scales linearly.
	Base  float64
	Ranks [3]float64
	SqMat [4]float64
}

// Estimate evaluates the fit at distance x:
//
//	Base·x/26 + Σ Ranks[k]·x^(k+1) + Σ SqMat[k]·(x²)^k
func (f Fit) Estimate(x float64) float64 {
	v := f.Base * x / 26
	for k, r := range f.Ranks {
		v += r * math.Pow(x, float64(k+1))
	}
	m := x * x
	for k, s := range f.SqMat {
		v += s * math.Pow(m, float64(k))
	}
	return v
}

// Model is a decoder performance model. Power is in watts and area in
// mm² per logical qubit; delay is in nanoseconds per decoding round.
type Model struct {
	Power Fit
	Area  Fit
	Delay Fit
	// HighestCalculatedDistance bounds the distances the fits are valid for.
	HighestCalculatedDistance int
}

var csvHeader = []string{"name", "d26", "rank1", "rank2", "rank3", "sqmat1", "sqmat2", "sqmat3", "sqmat4"}

// ReadCSV parses a model with a header row and power, area and delay rows.
func ReadCSV(r io.Reader, highest int) (*Model, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(csvHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading decoder model: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading decoder model: empty file")
	}
	for i, h := range csvHeader {
		if strings.TrimSpace(strings.ToLower(records[0][i])) != h {
			return nil, fmt.Errorf("reading decoder model: column %d is %q, expected %q", i, records[0][i], h)
		}
	}

	fits := make(map[string]Fit)
	for line, rec := range records[1:] {
		var vals [8]float64
		for i := range vals {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("reading decoder model: row %d column %s: %w", line+2, csvHeader[i+1], err)
			}
			vals[i] = v
		}
		fits[strings.ToLower(strings.TrimSpace(rec[0]))] = Fit{
			Base:  vals[0],
			Ranks: [3]float64{vals[1], vals[2], vals[3]},
			SqMat: [4]float64{vals[4], vals[5], vals[6], vals[7]},
		}
	}

	m := &Model{HighestCalculatedDistance: highest}
	for name, dst := range map[string]*Fit{"power": &m.Power, "area": &m.Area, "delay": &m.Delay} {
		f, ok := fits[name]
		if !ok {
			return nil, fmt.Errorf("reading decoder model: missing %q row", name)
		}
		*dst = f
	}
	return m, nil
}

// LoadCSV reads a model from a file.
func LoadCSV(path string, highest int) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, highest)
}

// Canonical returns the model's fit coefficients and valid range as a
// canonical value, so requests with different decoders hash apart.
func (m *Model) Canonical() ir.Object {
	return ir.Object{
		"power":                       m.Power.canonical(),
		"area":                        m.Area.canonical(),
		"delay":                       m.Delay.canonical(),
		"highest_calculated_distance": ir.Int(m.HighestCalculatedDistance),
	}
}

func (f Fit) canonical() ir.Object {
	ranks := make(ir.Array, len(f.Ranks))
	for i, r := range f.Ranks {
		ranks[i] = ir.Float(r)
	}
	sqmat := make(ir.Array, len(f.SqMat))
	for i, s := range f.SqMat {
		sqmat[i] = ir.Float(s)
	}
	return ir.Object{"base": ir.Float(f.Base), "ranks": ranks, "sqmat": sqmat}
}

// SpeedLimit returns the largest distance in [1, maxScan] whose decoding
// delay fits inside one logical cycle of d surface-code cycles, or 0 if
// none does. The scan is linear because delay fits need not be monotone.
func (m *Model) SpeedLimit(cycleTime float64, maxScan int) int {
	limit := 0
	for d := 1; d <= maxScan; d++ {
		if m.Delay.Estimate(float64(d))*1e-9 < 6*cycleTime*float64(d) {
			limit = d
		}
	}
	return limit
}

// Check computes decoder costs at distance d for a computation with the
// given logical qubits and space-time volume. When d is beyond the speed
// limit or the fitted range it returns nil and a warning.
func (m *Model) Check(d, nLogical, volume int, cycleTime float64, maxScan int, logger *slog.Logger) (*ir.DecoderInfo, *ir.Warning) {
	limit := m.SpeedLimit(cycleTime, maxScan)
	if d > limit || d > m.HighestCalculatedDistance {
		w := &ir.Warning{
			Code: ir.WarnDecoderOutOfRange,
			Message: fmt.Sprintf("code distance %d exceeds decoder range (speed limit %d, highest calculated %d)",
				d, limit, m.HighestCalculatedDistance),
		}
		logger.Warn("decoder cannot keep pace",
			"code_distance", d,
			"speed_limit", limit,
			"highest_calculated_distance", m.HighestCalculatedDistance)
		return nil, w
	}

	x := float64(d)
	power := m.Power.Estimate(x)
	return &ir.DecoderInfo{
		TotalEnergy:          power * float64(volume) * x * 6 * cycleTime,
		Power:                power * float64(nLogical),
		Area:                 m.Area.Estimate(x) * float64(nLogical),
		MaxDecodableDistance: limit,
	}, nil
}
