// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - LogFetcher: Retrieves a day's logs from the logs API
//   - StorageSink: Persists a day's messages (MongoDB, files, SQLite)
//   - IngestionLedger: Records ingested days, paired with a sink
//   - Clock: Supplies "today"
//   - IDGenerator: Produces message identifiers
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
