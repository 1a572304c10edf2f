package compiler

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/qre/internal/ir"
)

// QASMError reports a problem in QASM source.
type QASMError struct {
	Line      int
	Statement string
	Message   string
}

func (e *QASMError) Error() string {
	return fmt.Sprintf("qasm line %d: %s: %q", e.Line, e.Message, e.Statement)
}

var (
	// qregPattern matches `qreg q[4]`
	qregPattern = regexp.MustCompile(`^qreg\s+([A-Za-z_][A-Za-z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
	// gatePattern matches `name args` or `name(params) args`
	gatePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(?:\(([^)]*)\))?\s*(.*)$`)
	// operandPattern matches `q[0]`
	operandPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
)

// ignoredStatements carry no gate content for estimation.
var ignoredStatements = []string{"OPENQASM", "include", "creg", "barrier"}

type qreg struct {
	offset int
	size   int
}

// ParseQASM reads the QASM-lite subset into a circuit named name.
//
// Registers declared with qreg are laid out in declaration order. Angles
// may be plain numbers or products and quotients involving pi, e.g.
// `3*pi/8` or `-pi/2`.
func ParseQASM(name, src string) (ir.Circuit, error) {
	c := ir.Circuit{Name: name}
	regs := make(map[string]qreg)

	var pending strings.Builder
	for lineNo, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		parts := strings.Split(line, ";")
		for i, part := range parts {
			pending.WriteString(part)
			if i == len(parts)-1 {
				pending.WriteByte(' ')
				break
			}
			stmt := strings.TrimSpace(pending.String())
			pending.Reset()
			if stmt == "" {
				continue
			}
			if err := parseStatement(&c, regs, stmt); err != nil {
				err.Line = lineNo + 1
				return ir.Circuit{}, err
			}
		}
	}
	if rest := strings.TrimSpace(pending.String()); rest != "" {
		return ir.Circuit{}, &QASMError{Line: strings.Count(src, "\n") + 1, Statement: rest, Message: "missing semicolon"}
	}
	return c, nil
}

func parseStatement(c *ir.Circuit, regs map[string]qreg, stmt string) *QASMError {
	for _, prefix := range ignoredStatements {
		if strings.HasPrefix(stmt, prefix) {
			return nil
		}
	}

	if m := qregPattern.FindStringSubmatch(stmt); m != nil {
		if _, dup := regs[m[1]]; dup {
			return &QASMError{Statement: stmt, Message: "register redeclared"}
		}
		size, _ := strconv.Atoi(m[2])
		regs[m[1]] = qreg{offset: c.NumQubits, size: size}
		c.NumQubits += size
		return nil
	}

	m := gatePattern.FindStringSubmatch(stmt)
	if m == nil {
		return &QASMError{Statement: stmt, Message: "unrecognised statement"}
	}
	gate, ok := ir.ParseGate(m[1])
	if !ok {
		return &QASMError{Statement: stmt, Message: fmt.Sprintf("unsupported gate %q", m[1])}
	}

	op := ir.Operation{Gate: gate}
	if strings.TrimSpace(m[2]) != "" {
		for _, expr := range strings.Split(m[2], ",") {
			angle, err := parseAngle(expr)
			if err != nil {
				return &QASMError{Statement: stmt, Message: err.Error()}
			}
			op.Params = append(op.Params, angle)
		}
	}
	for _, operand := range strings.Split(m[3], ",") {
		q, err := resolveOperand(regs, strings.TrimSpace(operand))
		if err != nil {
			return &QASMError{Statement: stmt, Message: err.Error()}
		}
		op.Qubits = append(op.Qubits, q)
	}
	if len(op.Qubits) != gate.Arity() {
		return &QASMError{Statement: stmt, Message: fmt.Sprintf("%s takes %d qubit(s), got %d", gate, gate.Arity(), len(op.Qubits))}
	}
	wantParams := 0
	if gate.IsRotation() {
		wantParams = 1
	}
	if len(op.Params) != wantParams {
		return &QASMError{Statement: stmt, Message: fmt.Sprintf("%s takes %d parameter(s), got %d", gate, wantParams, len(op.Params))}
	}
	c.Operations = append(c.Operations, op)
	return nil
}

func resolveOperand(regs map[string]qreg, operand string) (int, error) {
	m := operandPattern.FindStringSubmatch(operand)
	if m == nil {
		return 0, fmt.Errorf("bad operand %q", operand)
	}
	r, ok := regs[m[1]]
	if !ok {
		return 0, fmt.Errorf("undeclared register %q", m[1])
	}
	idx, _ := strconv.Atoi(m[2])
	if idx >= r.size {
		return 0, fmt.Errorf("index %d out of range for %s[%d]", idx, m[1], r.size)
	}
	return r.offset + idx, nil
}

// parseAngle evaluates `[-]a*b*.../c` where each factor is a number or pi.
func parseAngle(expr string) (float64, error) {
	s := strings.ReplaceAll(expr, " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty angle")
	}
	sign := 1.0
	if s[0] == '-' {
		sign, s = -1, s[1:]
	}
	num, den, hasDen := strings.Cut(s, "/")

	value := 1.0
	for _, factor := range strings.Split(num, "*") {
		f, err := angleFactor(factor)
		if err != nil {
			return 0, fmt.Errorf("bad angle %q: %w", expr, err)
		}
		value *= f
	}
	if hasDen {
		d, err := angleFactor(den)
		if err != nil {
			return 0, fmt.Errorf("bad angle %q: %w", expr, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("bad angle %q: division by zero", expr)
		}
		value /= d
	}
	return sign * value, nil
}

func angleFactor(s string) (float64, error) {
	if s == "pi" {
		return math.Pi, nil
	}
	return strconv.ParseFloat(s, 64)
}
