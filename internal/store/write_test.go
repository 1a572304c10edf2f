package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qre/internal/ir"
)

func bg() context.Context { return context.Background() }

func TestWriteEstimate_Basic(t *testing.T) {
	s := createTestStore(t)
	res := testResult("trotter", 1)

	inserted, err := s.WriteEstimate(bg(), "est-1", testRequest("trotter"), res)
	if err != nil {
		t.Fatalf("WriteEstimate() failed: %v", err)
	}
	if !inserted {
		t.Error("inserted = false for a new id")
	}

	var program, optimization, rate, request, estVersion string
	var distance, cycles int
	var seq int64
	err = s.db.QueryRow(`
		SELECT program, optimization, logical_error_rate, request, estimator_version,
		       code_distance, total_cycles, seq
		FROM estimates WHERE id = ?
	`, "est-1").Scan(&program, &optimization, &rate, &request, &estVersion, &distance, &cycles, &seq)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if program != "trotter" {
		t.Errorf("program = %q, want %q", program, "trotter")
	}
	if optimization != "Space" {
		t.Errorf("optimization = %q, want %q", optimization, "Space")
	}
	if rate != "0.000306" {
		t.Errorf("logical_error_rate = %q, want exact text %q", rate, "0.000306")
	}
	if request != `{"hardware":"basic_sc","program":{"name":"trotter"}}` {
		t.Errorf("request = %s, want canonical JSON", request)
	}
	if estVersion != ir.EstimatorVersion {
		t.Errorf("estimator_version = %q, want %q", estVersion, ir.EstimatorVersion)
	}
	if distance != 9 || cycles != 663 || seq != 1 {
		t.Errorf("distance/cycles/seq = %d/%d/%d, want 9/663/1", distance, cycles, seq)
	}
}

func TestWriteEstimate_Idempotent(t *testing.T) {
	s := createTestStore(t)

	first := testResult("trotter", 1)
	second := testResult("trotter", 2)
	second.CodeDistance = 11

	inserted, err := s.WriteEstimate(bg(), "est-1", testRequest("trotter"), first)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.WriteEstimate(bg(), "est-1", testRequest("trotter"), second)
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate id must not insert")

	rec, err := s.ReadEstimate(bg(), "est-1")
	require.NoError(t, err)
	assert.Equal(t, 9, rec.Result.CodeDistance, "first write wins")
	assert.Equal(t, int64(1), rec.Result.Seq)
}

func TestWriteEstimate_MissingID(t *testing.T) {
	s := createTestStore(t)

	_, err := s.WriteEstimate(bg(), "", testRequest("p"), testResult("p", 1))
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("err = %v, want ErrMissingID", err)
	}
}

func TestWriteEstimate_NullResult(t *testing.T) {
	s := createTestStore(t)
	res := ir.NullResult("hard", ir.Time, ir.Warning{Code: ir.WarnNoViableFactory, Message: "none"})
	res.Hardware = "basic_sc"
	res.RunToken = "run-2"
	res.Seq = 4

	_, err := s.WriteEstimate(bg(), "est-null", testRequest("hard"), res)
	require.NoError(t, err)

	rate, err := s.LogicalErrorRate(bg(), "est-null")
	require.NoError(t, err)
	assert.Equal(t, "1", rate)

	rec, err := s.ReadEstimate(bg(), "est-null")
	require.NoError(t, err)
	assert.True(t, rec.Result.IsNull())
	assert.True(t, rec.Result.HasWarning(ir.WarnNoViableFactory))
}

func TestWriteEstimate_CanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(bg())
	cancel()

	_, err := s.WriteEstimate(ctx, "est-1", testRequest("p"), testResult("p", 1))
	assert.Error(t, err)
}
