package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driving"
	"github.com/custodia-labs/chatlog-backfill/internal/logger"
)

// Ensure IngestionOrchestrator implements the interface.
var _ driving.IngestionService = (*IngestionOrchestrator)(nil)

// IngestionOrchestrator drives the day-by-day backfill.
// Days are processed strictly in order and the first failure ends the run.
type IngestionOrchestrator struct {
	fetcher     driven.LogFetcher
	sink        driven.StorageSink
	transformer *RecordTransformer
	clock       driven.Clock
	now         func() time.Time
}

// NewIngestionOrchestrator creates a new orchestrator.
// The sink is chosen once by the caller and used for the whole run.
// ids and clock may be nil to use UUIDs and the system clock.
func NewIngestionOrchestrator(
	fetcher driven.LogFetcher,
	sink driven.StorageSink,
	ids driven.IDGenerator,
	clock driven.Clock,
) *IngestionOrchestrator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &IngestionOrchestrator{
		fetcher:     fetcher,
		sink:        sink,
		transformer: NewRecordTransformer(ids),
		clock:       clock,
		now:         time.Now,
	}
}

// Run ingests every day after req.Start through today.
//
//nolint:gocognit // Orchestration loop with sequential steps
func (o *IngestionOrchestrator) Run(ctx context.Context, req driving.RunRequest) (*driving.RunReport, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	observer := req.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	// 1. Snapshot today once for the whole run
	today := o.clock.Today()
	report := &driving.RunReport{
		Channel: req.Channel,
		Backend: o.sink.Name(),
		Today:   today,
	}

	// 2. Load ingested days once
	ledger := o.sink.Ledger()
	ingested, err := ledger.IngestedDays(ctx, req.Channel)
	if err != nil {
		return report, fmt.Errorf("load ledger: %w", err)
	}

	// 3. Enumerate the range
	days := slices.Collect(DateRange(req.Start, today))
	report.Planned = len(days)

	logger.Section("Ingest")
	logger.Info("Channel %s on %s backend: %d days from %s to %s, %d already ingested",
		req.Channel, report.Backend, len(days), req.Start.Next(), today, len(ingested))

	// 4. Process each day in order
	for i, day := range days {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%w before %s: %w", domain.ErrInterrupted, day, err)
		}

		if ingested.Has(day) {
			logger.Debug("Skipping %s: already ingested", day)
			report.Skipped++
			observer.DaySkipped(day, i, len(days))
			continue
		}

		if req.DryRun {
			report.Pending = append(report.Pending, day)
			continue
		}

		observer.DayStarted(day, i, len(days))
		count, err := o.ingestDay(ctx, ledger, req.Channel, day)
		if err != nil {
			return report, err
		}

		report.Ingested++
		report.Messages += count
		observer.DayIngested(day, count, i, len(days))
	}

	logger.Info("Ingest complete: %d ingested, %d skipped, %d messages",
		report.Ingested, report.Skipped, report.Messages)
	return report, nil
}

// Status reports which days in the range are already ingested.
func (o *IngestionOrchestrator) Status(ctx context.Context, req driving.RunRequest) (*driving.RangeStatus, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	today := o.clock.Today()
	ledger := o.sink.Ledger()
	ingested, err := ledger.IngestedDays(ctx, req.Channel)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	status := &driving.RangeStatus{
		Channel: req.Channel,
		Backend: o.sink.Name(),
		Durable: ledger.Durable(),
		Today:   today,
	}
	for day := range DateRange(req.Start, today) {
		if ingested.Has(day) {
			status.Ingested = append(status.Ingested, day)
		} else {
			status.Missing = append(status.Missing, day)
		}
	}
	return status, nil
}

// ingestDay fetches, transforms, persists and records a single day.
// It returns the number of messages persisted.
func (o *IngestionOrchestrator) ingestDay(
	ctx context.Context,
	ledger driven.IngestionLedger,
	channel string,
	day domain.Day,
) (int, error) {
	// 1. FETCH
	payload, err := o.fetcher.Fetch(ctx, channel, day)
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%w during %s: %w", domain.ErrInterrupted, day, err)
		}
		return 0, fmt.Errorf("day %s: %w", day, err)
	}

	// 2. CHECKSUM the untransformed payload
	checksum, err := Checksum(payload)
	if err != nil {
		return 0, fmt.Errorf("day %s: %w: %w", day, domain.ErrFetch, err)
	}

	// 3. TRANSFORM (assign identifiers to a copy)
	transformed := o.transformer.Transform(payload)

	// 4. PERSIST
	if err := o.sink.Persist(ctx, channel, day, transformed); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%w during %s: %w", domain.ErrInterrupted, day, err)
		}
		return 0, fmt.Errorf("day %s: %w", day, err)
	}

	// 5. RECORD in the ledger (durable backends only)
	if !ledger.Durable() {
		logger.Debug("Persisted %s (%d messages), ledger not durable", day, len(transformed.Messages))
		return len(transformed.Messages), nil
	}

	entry := domain.LedgerEntry{
		Checksum:   checksum,
		Channel:    channel,
		Day:        day,
		Messages:   len(transformed.Messages),
		IngestedAt: o.now().UTC(),
	}
	if err := ledger.Append(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Another day had byte-identical content (typically an empty day).
			// The day stays unrecorded and is fetched again next run.
			logger.Warn("Ledger already has checksum %s; %s not recorded", checksum, day)
			return len(transformed.Messages), nil
		}
		return 0, fmt.Errorf("day %s: record ledger entry: %w", day, err)
	}

	logger.Debug("Ingested %s: %d messages, checksum %s", day, entry.Messages, checksum)
	return entry.Messages, nil
}

func validateRequest(req driving.RunRequest) error {
	if req.Channel == "" {
		return fmt.Errorf("%w: channel is required", domain.ErrInvalidInput)
	}
	if req.Start.IsZero() {
		return fmt.Errorf("%w: start day is required", domain.ErrInvalidInput)
	}
	return nil
}

// noopObserver discards progress notifications.
type noopObserver struct{}

func (noopObserver) DayStarted(domain.Day, int, int)       {}
func (noopObserver) DaySkipped(domain.Day, int, int)       {}
func (noopObserver) DayIngested(domain.Day, int, int, int) {}
