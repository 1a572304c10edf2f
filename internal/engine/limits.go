package engine

import "fmt"

// Limits bounds every search loop of the estimator. All loops are finite
// by construction; these are the knobs callers tune for responsiveness.
type Limits struct {
	// MinDistance is the first code distance tried. Distances are odd.
	MinDistance int
	// MaxDistance is the exclusive upper bound of the distance search.
	MaxDistance int
	// MaxSynthesisRetries caps the synthesis-tolerance attempts.
	MaxSynthesisRetries int
	// PrecisionFloor is the smallest synthesis tolerance tried before
	// giving up on tightening.
	PrecisionFloor float64
	// TDominance is the share of non-Clifford gates that are T gates,
	// nT/(nT+nRot), above which synthesis error is treated as negligible.
	TDominance float64
}

// Default limits.
const (
	DefaultMinDistance         = 3
	DefaultMaxDistance         = 200
	DefaultMaxSynthesisRetries = 10
	DefaultPrecisionFloor      = 1e-25
	DefaultTDominance          = 0.99
)

// DefaultLimits returns the default search bounds.
func DefaultLimits() Limits {
	return Limits{
		MinDistance:         DefaultMinDistance,
		MaxDistance:         DefaultMaxDistance,
		MaxSynthesisRetries: DefaultMaxSynthesisRetries,
		PrecisionFloor:      DefaultPrecisionFloor,
		TDominance:          DefaultTDominance,
	}
}

// Validate checks the limits are usable.
func (l Limits) Validate() error {
	switch {
	case l.MinDistance < 1 || l.MinDistance%2 == 0:
		return fmt.Errorf("min distance must be a positive odd number, got %d", l.MinDistance)
	case l.MaxDistance <= l.MinDistance:
		return fmt.Errorf("max distance %d must exceed min distance %d", l.MaxDistance, l.MinDistance)
	case l.MaxSynthesisRetries < 1:
		return fmt.Errorf("max synthesis retries must be at least 1, got %d", l.MaxSynthesisRetries)
	case l.PrecisionFloor <= 0:
		return fmt.Errorf("precision floor must be positive, got %g", l.PrecisionFloor)
	case l.TDominance <= 0 || l.TDominance > 1:
		return fmt.Errorf("T dominance must be in (0,1], got %g", l.TDominance)
	}
	return nil
}

// retryQuota counts synthesis attempts against a limit.
type retryQuota struct {
	limit   int
	current int
}

func newRetryQuota(limit int) *retryQuota {
	return &retryQuota{limit: limit}
}

// Next records one more attempt and reports whether it is allowed.
func (q *retryQuota) Next() bool {
	if q.current >= q.limit {
		return false
	}
	q.current++
	return true
}

// Used returns the number of attempts recorded.
func (q *retryQuota) Used() int {
	return q.current
}
