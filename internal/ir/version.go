package ir

// Version constants for request hashing and persisted results.
const (
	// SchemaVersion is the version of the persisted ResourceInfo layout.
	SchemaVersion = "1"

	// EstimatorVersion is the estimator release. It is part of every request
	// hash so cached estimates are invalidated when the model changes.
	EstimatorVersion = "0.3.0"
)
