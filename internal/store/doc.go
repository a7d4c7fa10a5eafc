// Package store provides SQLite-backed storage for job tree traces.
//
// The store is an append-only log with two tables:
//   - runs: one row per engine run, keyed by a UUIDv7 run ID
//   - records: the trace records of a run, keyed by (run_id, seq)
//
// # Ordering
//
// Records are ordered by their logical sequence number, never by wall time.
// Every query over records uses ORDER BY seq ASC, so reading a run back
// yields exactly the order the tree produced it in. Runs list in ID order,
// which for UUIDv7 is creation order.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING. Appending the same records twice, or
// creating the same run twice, leaves one copy.
//
// # Connection settings
//
// Every pooled connection opens in WAL mode with synchronous=NORMAL, a 5s
// busy timeout and foreign keys enforced, so records must belong to a run.
// The schema version lives in PRAGMA user_version; Open refuses a database
// stamped by a newer build.
//
// The store records what a tree did. It is never read back into a tree.
package store
