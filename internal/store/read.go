package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/qre/internal/ir"
)

// ErrNotFound is returned when no estimate has the requested id.
var ErrNotFound = errors.New("estimate not found")

// Record is one persisted estimate.
type Record struct {
	ID string
	// Request is the canonical JSON of the request that produced Result.
	Request string
	Result  ir.ResourceInfo
}

// ReadEstimate retrieves a single estimate by request id.
// Returns ErrNotFound if no row matches.
func (s *Store) ReadEstimate(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM estimates WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// ListEstimates returns estimates matching f in seq order.
// An empty history yields an empty, non-nil slice.
func (s *Store) ListEstimates(ctx context.Context, f Filter) ([]Record, error) {
	query, params := f.compile()
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	return records, nil
}

// MaxSeq returns the highest recorded seq, or 0 for an empty history.
// Callers resume the estimator clock from it so seq stays monotonic
// across process restarts.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM estimates`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}

// LogicalErrorRate returns the stored exact rate text for id.
func (s *Store) LogicalErrorRate(ctx context.Context, id string) (string, error) {
	var rate string
	err := s.db.QueryRowContext(ctx, `SELECT logical_error_rate FROM estimates WHERE id = ?`, id).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("read logical error rate: %w", err)
	}
	return rate, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec     Record
		resJSON string
	)
	if err := row.Scan(&rec.ID, &rec.Request, &resJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan estimate: %w", err)
	}
	res, err := unmarshalResult(resJSON)
	if err != nil {
		return Record{}, err
	}
	rec.Result = res
	return rec, nil
}
