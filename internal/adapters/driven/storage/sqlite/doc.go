// Package sqlite provides an embedded SQLite storage backend.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database file holds both
// halves of the backend:
//
//   - StorageSink: messages table, one row per message keyed by _id
//   - IngestionLedger: ledger table, one row per ingested day keyed by (channel, checksum)
//
// Because the ledger is durable, SQLite runs are idempotent like MongoDB runs.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
