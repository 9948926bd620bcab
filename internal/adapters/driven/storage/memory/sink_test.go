package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

func message(id, text string) domain.MessageRecord {
	return domain.MessageRecord{Fields: []domain.Field{
		{Key: "text", Value: json.RawMessage(`"` + text + `"`)},
		{Key: domain.IDKey, Value: json.RawMessage(`"` + id + `"`)},
	}}
}

func TestNewSink_DefaultLedger(t *testing.T) {
	sink := NewSink(nil)
	require.NotNil(t, sink.Ledger())
	assert.Equal(t, "memory", sink.Name())
	assert.NoError(t, sink.Close())
}

func TestSink_Persist(t *testing.T) {
	sink := NewSink(nil)
	ctx := context.Background()
	day := domain.NewDay(2022, time.January, 1)

	payload := &domain.LogPayload{Messages: []domain.MessageRecord{message("1", "a"), message("2", "b")}}
	require.NoError(t, sink.Persist(ctx, "forsen", day, payload))

	assert.Len(t, sink.Messages("forsen"), 2)
	assert.Empty(t, sink.Messages("xqc"))
	assert.Equal(t, 1, sink.Writes(day))
}

func TestSink_Persist_DuplicateIDRejectsWholeDay(t *testing.T) {
	sink := NewSink(nil)
	ctx := context.Background()
	day := domain.NewDay(2022, time.January, 1)

	require.NoError(t, sink.Persist(ctx, "forsen", day,
		&domain.LogPayload{Messages: []domain.MessageRecord{message("1", "a")}}))

	err := sink.Persist(ctx, "forsen", day.Next(),
		&domain.LogPayload{Messages: []domain.MessageRecord{message("2", "b"), message("1", "c")}})
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Len(t, sink.Messages("forsen"), 1)
	assert.Equal(t, 0, sink.Writes(day.Next()))
}

func TestSink_Persist_MissingID(t *testing.T) {
	sink := NewSink(nil)

	payload := &domain.LogPayload{Messages: []domain.MessageRecord{
		{Fields: []domain.Field{{Key: "text", Value: json.RawMessage(`"x"`)}}},
	}}
	err := sink.Persist(context.Background(), "forsen", domain.NewDay(2022, time.January, 1), payload)
	assert.ErrorIs(t, err, domain.ErrStorage)
}
