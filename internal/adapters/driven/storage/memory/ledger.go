package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.IngestionLedger = (*Ledger)(nil)

// Ledger is an in-memory implementation of driven.IngestionLedger.
// Entries live as long as the Ledger value, so sharing one across runs
// behaves like a document-store ledger.
type Ledger struct {
	mu      sync.RWMutex
	entries map[ledgerKey]domain.LedgerEntry
}

// ledgerKey scopes checksums to a channel, like one metadata collection
// per channel.
type ledgerKey struct {
	channel  string
	checksum string
}

// NewLedger creates a new in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[ledgerKey]domain.LedgerEntry),
	}
}

// IngestedDays returns the days recorded for a channel.
func (l *Ledger) IngestedDays(_ context.Context, channel string) (domain.DaySet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	days := make(domain.DaySet)
	for _, e := range l.entries {
		if e.Channel == channel {
			days.Add(e.Day)
		}
	}
	return days, nil
}

// Append records an entry, rejecting a checksum already recorded for the channel.
func (l *Ledger) Append(_ context.Context, entry domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey{channel: entry.Channel, checksum: entry.Checksum}
	if _, ok := l.entries[key]; ok {
		return domain.ErrAlreadyExists
	}
	l.entries[key] = entry
	return nil
}

// Durable reports true: entries outlive a single run.
func (l *Ledger) Durable() bool {
	return true
}

// Entries returns all entries ordered by day.
func (l *Ledger) Entries() []domain.LedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}
