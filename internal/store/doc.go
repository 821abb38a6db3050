// Package store provides SQLite-backed durable storage for imported build
// traces.
//
// The store holds two tables:
//   - Sessions: one row per supervised build
//   - Invocations: one row per distinct intercepted command per session
//
// # Critical Patterns
//
// CP-1: Content-Addressed Idempotency
//   - UNIQUE(session_id, id) constraint on invocations
//   - Re-importing the same trace is a no-op; rerunning a build under a
//     fresh session keeps both copies
//
// CP-2: Deterministic Query Results
//   - All queries include: ORDER BY seq ASC, id COLLATE BINARY ASC
//   - Ensures identical results across repeated list/cdb/graph runs
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Invocation IDs are computed via internal/ident: canonical JSON of the
// (cwd, path, args) triple, SHA-256 with domain separation.
package store
