// Package storage selects and opens the storage backend for a run.
//
// The backend is chosen once from configuration presence:
//
//   - a MongoDB connection string selects the document store (mongostore)
//   - otherwise a SQLite path selects the embedded store (sqlite)
//   - otherwise per-day JSON files are written (file)
//
// The MongoDB and SQLite backends keep a durable ledger and skip days
// already ingested. The file backend does not, and rewrites every day on
// every run.
package storage
