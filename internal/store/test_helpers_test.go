package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/qre/internal/ir"
)

// createTestStore opens a fresh database that is closed on cleanup.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testResult builds a small space-mode result with the given seq.
func testResult(program string, seq int64) ir.ResourceInfo {
	return ir.ResourceInfo{
		RunToken:              "run-1",
		Seq:                   seq,
		Program:               program,
		Hardware:              "basic_sc",
		Optimization:          ir.Space,
		CodeDistance:          9,
		LogicalErrorRate:      0.000306,
		LogicalErrorRateExact: "0.000306",
		NLogicalQubits:        2,
		PhysicalQubits:        324,
		FactoryPhysicalQubits: 4620,
		TotalPhysicalQubits:   4944,
		TotalCycles:           663,
		TotalTime:             3.978e-4,
		NShots:                1,
		FactoryName:           "(15-to-1)_{17,7,7}",
		NFactories:            1,
		NTPerRotation:         15,
	}
}

func testRequest(program string) ir.Object {
	return ir.Object{
		"program":  ir.Object{"name": ir.String(program)},
		"hardware": ir.String("basic_sc"),
	}
}
