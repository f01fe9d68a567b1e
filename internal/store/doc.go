// Package store provides SQLite-backed history of synthesis runs.
//
// Each run records the parameters and seed needed to regenerate its
// workload byte for byte, the workload digest, and a per-interval breakdown
// of how the rate series was split across lanes.
//
// # Ordering
//
// Runs are ordered by created_seq, a logical counter assigned on insert.
// Wall time is never stored or used for ordering, so two stores fed the same
// runs in the same order list them identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: run_intervals rows cascade with their run
package store
