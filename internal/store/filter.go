package store

import (
	"strings"

	"github.com/roach88/qre/internal/ir"
)

// Filter selects estimates from the history. Zero fields match everything.
type Filter struct {
	Program      string
	Hardware     string
	Optimization ir.Optimization
	// MaxDistance keeps estimates with code_distance <= MaxDistance.
	// Null results (distance -1) always pass this predicate.
	MaxDistance int
	// WarningsOnly keeps estimates that carry at least one warning.
	WarningsOnly bool
	// Limit caps the number of rows; 0 means no limit.
	Limit int
}

// stableOrder is appended to every listing query.
const stableOrder = " ORDER BY seq ASC, id ASC COLLATE BINARY"

const recordColumns = "id, request, result"

// compile converts the filter to parameterized SQL.
// Values are always bound as parameters, never interpolated.
func (f Filter) compile() (string, []any) {
	var (
		conds  []string
		params []any
	)
	if f.Program != "" {
		conds = append(conds, "program = ?")
		params = append(params, f.Program)
	}
	if f.Hardware != "" {
		conds = append(conds, "hardware = ?")
		params = append(params, f.Hardware)
	}
	if f.Optimization != "" {
		conds = append(conds, "optimization = ?")
		params = append(params, string(f.Optimization))
	}
	if f.MaxDistance > 0 {
		conds = append(conds, "code_distance <= ?")
		params = append(params, f.MaxDistance)
	}
	if f.WarningsOnly {
		conds = append(conds, "warnings > 0")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + recordColumns + " FROM estimates")
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(stableOrder)
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, f.Limit)
	}
	return sb.String(), params
}
