// Package memory provides in-memory storage adapters.
//
// Sink and Ledger keep everything in maps guarded by a mutex. They back
// the orchestrator tests and are useful for experiments that should not
// touch disk or a database. A Ledger shared across runs behaves like a
// durable one; pairing a Sink with file.NullLedger reproduces the
// non-idempotent file backend.
package memory
