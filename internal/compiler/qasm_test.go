package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qre/internal/ir"
)

func TestParseQASMBasic(t *testing.T) {
	src := `
		OPENQASM 2.0;
		include "qelib1.inc";
		qreg q[2];
		creg c[2];
		h q[0];            // prepare
		rz(pi/4) q[0];
		cx q[0],q[1];
		tdg q[1]; sdg q[0];
	`
	c, err := ParseQASM("bell", src)
	require.NoError(t, err)

	assert.Equal(t, "bell", c.Name)
	assert.Equal(t, 2, c.NumQubits)
	require.Len(t, c.Operations, 5)
	assert.Equal(t, ir.Op(ir.GateH, 0), c.Operations[0])
	assert.Equal(t, ir.GateRZ, c.Operations[1].Gate)
	assert.InDelta(t, math.Pi/4, c.Operations[1].Params[0], 1e-15)
	assert.Equal(t, ir.Op(ir.GateCNOT, 0, 1), c.Operations[2])
	assert.Equal(t, ir.Op(ir.GateTDG, 1), c.Operations[3])
	assert.Equal(t, ir.Op(ir.GateSDG, 0), c.Operations[4])
	assert.NoError(t, c.Validate())
}

func TestParseQASMMultipleRegisters(t *testing.T) {
	c, err := ParseQASM("regs", "qreg a[2]; qreg b[3]; cz a[1],b[2];")
	require.NoError(t, err)

	assert.Equal(t, 5, c.NumQubits)
	assert.Equal(t, []int{1, 4}, c.Operations[0].Qubits)
}

func TestParseQASMStatementAcrossLines(t *testing.T) {
	c, err := ParseQASM("split", "qreg q[2];\ncx q[0],\n   q[1];")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, c.Operations[0].Qubits)
}

func TestParseAngle(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"0.5", 0.5},
		{"pi", math.Pi},
		{"-pi/2", -math.Pi / 2},
		{"3*pi/8", 3 * math.Pi / 8},
		{" 2 * pi ", 2 * math.Pi},
		{"1e-3", 1e-3},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseAngle(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-15)
		})
	}

	for _, bad := range []string{"", "tau", "pi/0", "pi/x"} {
		_, err := parseAngle(bad)
		assert.Error(t, err, "angle %q", bad)
	}
}

func TestParseQASMErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		line    int
		message string
	}{
		{"unknown gate", "qreg q[1];\nccx q[0];", 2, "unsupported gate"},
		{"undeclared register", "qreg q[1];\nh r[0];", 2, "undeclared register"},
		{"index out of range", "qreg q[1];\nh q[1];", 2, "out of range"},
		{"wrong arity", "qreg q[2];\ncx q[0];", 2, "takes 2 qubit(s)"},
		{"missing angle", "qreg q[1];\nrz q[0];", 2, "takes 1 parameter(s)"},
		{"angle on clifford", "qreg q[1];\nh(0.1) q[0];", 2, "takes 0 parameter(s)"},
		{"redeclared register", "qreg q[1];\nqreg q[2];", 2, "redeclared"},
		{"missing semicolon", "qreg q[1];\nh q[0]", 2, "missing semicolon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQASM("bad", tt.src)
			require.Error(t, err)

			var qe *QASMError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tt.line, qe.Line)
			assert.Contains(t, qe.Message, tt.message)
		})
	}
}

func TestNativize(t *testing.T) {
	c := ir.Circuit{Name: "swap", NumQubits: 2, Operations: []ir.Operation{
		ir.Op(ir.GateI, 0),
		ir.Op(ir.GateSWAP, 0, 1),
		ir.Op(ir.GateT, 1),
	}}

	got := Nativize(c)

	assert.Equal(t, []ir.Operation{
		ir.Op(ir.GateCNOT, 0, 1),
		ir.Op(ir.GateCNOT, 1, 0),
		ir.Op(ir.GateCNOT, 0, 1),
		ir.Op(ir.GateT, 1),
	}, got.Operations)
	assert.Equal(t, 2, got.NumQubits)
	assert.Len(t, c.Operations, 3, "input is not modified")
}
