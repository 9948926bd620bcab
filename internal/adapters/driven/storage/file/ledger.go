package file

import (
	"context"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
)

// Ensure NullLedger implements the interface.
var _ driven.IngestionLedger = NullLedger{}

// NullLedger is the file backend's ledger: it is always empty and
// appends are discarded, so file runs are not idempotent.
type NullLedger struct{}

// IngestedDays returns an empty set.
func (NullLedger) IngestedDays(context.Context, string) (domain.DaySet, error) {
	return domain.DaySet{}, nil
}

// Append discards the entry.
func (NullLedger) Append(context.Context, domain.LedgerEntry) error {
	return nil
}

// Durable reports false.
func (NullLedger) Durable() bool {
	return false
}
