// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IngestionOrchestrator walks the date range one day at a time. The
// helpers it relies on (DateRange, Checksum, RecordTransformer and the
// clocks) are exported so they can be tested and reused on their own.
package services
