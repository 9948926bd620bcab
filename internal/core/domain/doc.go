// Package domain defines the core business entities for chatlog-backfill.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Day: A calendar date targeted for ingestion
//   - LogPayload: One day's response from the logs API
//   - MessageRecord: An opaque, order-preserving chat message
//   - LedgerEntry: Proof that a day was ingested
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
