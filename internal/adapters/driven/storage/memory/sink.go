package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.StorageSink = (*Sink)(nil)

// Sink is an in-memory implementation of driven.StorageSink.
// Messages are kept per channel and keyed by identifier, like a collection.
type Sink struct {
	mu       sync.RWMutex
	ledger   driven.IngestionLedger
	messages map[string][]domain.MessageRecord
	ids      map[string]struct{}
	writes   map[domain.Day]int
}

// NewSink creates a sink paired with the given ledger.
// A nil ledger gets a fresh in-memory one.
func NewSink(ledger driven.IngestionLedger) *Sink {
	if ledger == nil {
		ledger = NewLedger()
	}
	return &Sink{
		ledger:   ledger,
		messages: make(map[string][]domain.MessageRecord),
		ids:      make(map[string]struct{}),
		writes:   make(map[domain.Day]int),
	}
}

// Name returns the backend name.
func (s *Sink) Name() string {
	return "memory"
}

// Persist stores the day's messages. Duplicate identifiers are rejected
// and nothing from the day is stored.
func (s *Sink) Persist(_ context.Context, channel string, day domain.Day, payload *domain.LogPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(payload.Messages))
	for _, msg := range payload.Messages {
		raw, ok := msg.Get(domain.IDKey)
		if !ok {
			return fmt.Errorf("%w: message without %s", domain.ErrStorage, domain.IDKey)
		}
		id := string(raw)
		if _, dup := s.ids[id]; dup {
			return fmt.Errorf("%w: duplicate %s %s", domain.ErrStorage, domain.IDKey, id)
		}
		ids = append(ids, id)
	}

	for i, msg := range payload.Messages {
		s.ids[ids[i]] = struct{}{}
		s.messages[channel] = append(s.messages[channel], msg.Clone())
	}
	s.writes[day]++
	return nil
}

// Ledger returns the paired ledger.
func (s *Sink) Ledger() driven.IngestionLedger {
	return s.ledger
}

// Close is a no-op.
func (s *Sink) Close() error {
	return nil
}

// Messages returns the stored messages for a channel.
func (s *Sink) Messages(channel string) []domain.MessageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MessageRecord(nil), s.messages[channel]...)
}

// Writes returns how many times a day was persisted.
func (s *Sink) Writes(day domain.Day) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[day]
}
