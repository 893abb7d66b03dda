// Package repositories implements SQLite persistence for archive run history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RunRepository] : One row per archive invocation with totals and timing
//   - [OutcomeRepository] : Per-project results belonging to a run
//   - [HistoryRecorder] : Persists a finished run and its outcomes
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
