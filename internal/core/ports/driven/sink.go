package driven

import (
	"context"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

// StorageSink persists one day's transformed messages.
// Each backend (document store, files, SQLite) implements this interface
// and supplies the ledger that goes with it.
type StorageSink interface {
	// Name identifies the backend (e.g. "mongo", "file").
	Name() string

	// Persist stores the day's payload durably before returning.
	// Failures wrap domain.ErrStorage.
	Persist(ctx context.Context, channel string, day domain.Day, payload *domain.LogPayload) error

	// Ledger returns the ledger paired with this backend.
	Ledger() IngestionLedger

	// Close releases resources.
	Close() error
}
