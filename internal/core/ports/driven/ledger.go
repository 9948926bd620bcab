package driven

import (
	"context"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

// IngestionLedger records which days have been ingested.
// It is the source of truth for skip decisions.
type IngestionLedger interface {
	// IngestedDays returns every day with a ledger entry for the channel.
	IngestedDays(ctx context.Context, channel string) (domain.DaySet, error)

	// Append records a new entry. Entries are keyed by checksum;
	// appending a checksum that already exists returns domain.ErrAlreadyExists.
	Append(ctx context.Context, entry domain.LedgerEntry) error

	// Durable reports whether entries survive the process. Backends that
	// return false re-ingest every day on every run.
	Durable() bool
}
