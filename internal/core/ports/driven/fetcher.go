package driven

import (
	"context"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

// LogFetcher retrieves one day's chat logs from the remote source.
type LogFetcher interface {
	// Fetch returns the parsed payload for a channel and day.
	// Failures wrap domain.ErrFetch. Fetch never retries.
	Fetch(ctx context.Context, channel string, day domain.Day) (*domain.LogPayload, error)
}
