package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/qre/internal/ir"
)

// ErrMissingID is returned when an estimate is written without a request id.
var ErrMissingID = errors.New("estimate id is required")

// WriteEstimate records res under the request hash id.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: the first estimate
// for a request wins and later writes of the same id are ignored.
//
// It reports whether a new row was inserted.
func (s *Store) WriteEstimate(ctx context.Context, id string, req ir.Object, res ir.ResourceInfo) (bool, error) {
	if id == "" {
		return false, ErrMissingID
	}
	reqJSON, err := marshalRequest(req)
	if err != nil {
		return false, fmt.Errorf("write estimate: %w", err)
	}
	resJSON, err := marshalResult(res)
	if err != nil {
		return false, fmt.Errorf("write estimate: %w", err)
	}

	out, err := s.db.ExecContext(ctx, `
		INSERT INTO estimates
		(id, run_token, seq, program, hardware, optimization,
		 code_distance, n_logical_qubits, physical_qubits, total_physical_qubits,
		 total_cycles, total_time, factory_name, logical_error_rate, warnings,
		 request, result, estimator_version, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		res.RunToken,
		res.Seq,
		res.Program,
		res.Hardware,
		string(res.Optimization),
		res.CodeDistance,
		res.NLogicalQubits,
		res.PhysicalQubits,
		res.TotalPhysicalQubits,
		res.TotalCycles,
		res.TotalTime,
		res.FactoryName,
		exactRate(res),
		len(res.Warnings),
		reqJSON,
		resJSON,
		ir.EstimatorVersion,
		ir.SchemaVersion,
	)
	if err != nil {
		return false, fmt.Errorf("write estimate: %w", err)
	}
	n, err := out.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write estimate: %w", err)
	}
	return n == 1, nil
}
