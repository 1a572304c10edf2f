// Package store provides SQLite-backed history for resource estimates.
//
// Each row is one estimate keyed by its request hash (ir.RequestID). The
// table is append-only: writing an id that already exists is a no-op, so
// re-running an identical request never duplicates history.
//
// # Ordering
//
// Every listing query ends with ORDER BY seq ASC, id ASC COLLATE BINARY.
// seq is the estimator's logical clock, never wall time, so listings are
// identical across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The full result is kept as JSON next to the indexed summary columns.
// logical_error_rate is stored as the exact decimal text so it survives a
// round trip without float formatting drift.
package store
