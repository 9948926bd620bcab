package driving

import (
	"context"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

// IngestionService backfills a channel's chat logs day by day.
type IngestionService interface {
	// Run ingests every day after req.Start up to and including today.
	// It stops at the first error; days before it stay ingested.
	Run(ctx context.Context, req RunRequest) (*RunReport, error)

	// Status reports which days in the range are already ingested.
	Status(ctx context.Context, req RunRequest) (*RangeStatus, error)
}

// RunRequest describes one backfill run.
type RunRequest struct {
	// Channel is the channel whose logs are fetched.
	Channel string

	// Start is exclusive: the first day attempted is Start.Next().
	Start domain.Day

	// DryRun enumerates and reports days without fetching or persisting.
	DryRun bool

	// Observer receives progress notifications. May be nil.
	Observer ProgressObserver
}

// RunReport summarises a run. On error it reflects the work done
// before the failure.
type RunReport struct {
	Channel string
	Backend string

	// Today is the upper bound snapshotted at the start of the run.
	Today domain.Day

	// Planned is the number of days in the range.
	Planned int

	// Skipped counts days already present in the ledger.
	Skipped int

	// Ingested counts days fetched and persisted in this run.
	Ingested int

	// Messages is the number of messages persisted in this run.
	Messages int

	// Pending lists days a dry run would fetch.
	Pending []domain.Day
}

// RangeStatus lists ingested and missing days for a range.
type RangeStatus struct {
	Channel  string
	Backend  string
	Durable  bool
	Today    domain.Day
	Ingested []domain.Day
	Missing  []domain.Day
}

// ProgressObserver receives per-day notifications from a run.
type ProgressObserver interface {
	// DayStarted is called before a day is fetched.
	DayStarted(day domain.Day, index, total int)

	// DaySkipped is called for a day already in the ledger.
	DaySkipped(day domain.Day, index, total int)

	// DayIngested is called after a day was persisted.
	DayIngested(day domain.Day, messages int, index, total int)
}
