package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driving"
	"github.com/custodia-labs/chatlog-backfill/internal/core/services"
)

var testDay = domain.NewDay(2022, time.January, 3)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testPayload(t *testing.T, body string) *domain.LogPayload {
	t.Helper()
	var p domain.LogPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return &p
}

func countMessages(t *testing.T, store *Store, channel string) int {
	t.Helper()
	var n int
	row := store.db.QueryRow("SELECT COUNT(*) FROM messages WHERE channel = ?", channel)
	require.NoError(t, row.Scan(&n))
	return n
}

func TestNewStore_CreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	path := filepath.Join(dir, "ledger.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	assert.Equal(t, "sqlite", store.Name())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewStore_Directory(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DefaultFileName), store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Ledger().Append(ctx, domain.LedgerEntry{
		Checksum: "abc", Channel: "forsen", Day: testDay, Messages: 1,
	}))
	require.NoError(t, store.Close())

	// Migrations must not run twice.
	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	days, err := reopened.Ledger().IngestedDays(ctx, "forsen")
	require.NoError(t, err)
	assert.True(t, days.Has(testDay))
}

func TestStore_Persist(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	payload := testPayload(t, `{"messages":[{"text":"a","_id":"id-1"},{"text":"b","_id":"id-2"}]}`)
	require.NoError(t, store.Persist(ctx, "forsen", testDay, payload))

	assert.Equal(t, 2, countMessages(t, store, "forsen"))

	var body string
	row := store.db.QueryRowContext(ctx, "SELECT body FROM messages WHERE id = ?", "id-2")
	require.NoError(t, row.Scan(&body))
	assert.Equal(t, `{"text":"b","_id":"id-2"}`, body)
}

func TestStore_Persist_IsAllOrNothing(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Persist(ctx, "forsen", testDay,
		testPayload(t, `{"messages":[{"_id":"id-1"}]}`)))

	err := store.Persist(ctx, "forsen", testDay.Next(),
		testPayload(t, `{"messages":[{"_id":"id-2"},{"_id":"id-1"}]}`))
	assert.ErrorIs(t, err, domain.ErrStorage)

	assert.Equal(t, 1, countMessages(t, store, "forsen"))
}

func TestStore_Persist_MissingID(t *testing.T) {
	store := setupTestStore(t)

	err := store.Persist(context.Background(), "forsen", testDay,
		testPayload(t, `{"messages":[{"text":"no id"}]}`))
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestStore_Persist_EmptyDay(t *testing.T) {
	store := setupTestStore(t)

	err := store.Persist(context.Background(), "forsen", testDay, testPayload(t, `{"messages":[]}`))
	assert.NoError(t, err)
}

func TestLedger_AppendAndIngestedDays(t *testing.T) {
	store := setupTestStore(t)
	ledger := store.Ledger()
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, domain.LedgerEntry{
		Checksum: "a", Channel: "forsen", Day: testDay, Messages: 2, IngestedAt: time.Now(),
	}))
	require.NoError(t, ledger.Append(ctx, domain.LedgerEntry{
		Checksum: "b", Channel: "xqc", Day: testDay.Next(), Messages: 1,
	}))

	days, err := ledger.IngestedDays(ctx, "forsen")
	require.NoError(t, err)
	assert.Len(t, days, 1)
	assert.True(t, days.Has(testDay))
	assert.True(t, ledger.Durable())
}

func TestLedger_Append_DuplicateChecksum(t *testing.T) {
	store := setupTestStore(t)
	ledger := store.Ledger()
	ctx := context.Background()

	entry := domain.LedgerEntry{Checksum: "a", Channel: "forsen", Day: testDay}
	require.NoError(t, ledger.Append(ctx, entry))

	entry.Day = testDay.Next()
	err := ledger.Append(ctx, entry)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	days, err := ledger.IngestedDays(ctx, "forsen")
	require.NoError(t, err)
	assert.False(t, days.Has(testDay.Next()))
}

func TestLedger_Append_SameChecksumAcrossChannels(t *testing.T) {
	store := setupTestStore(t)
	ledger := store.Ledger()
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, domain.LedgerEntry{Checksum: "a", Channel: "forsen", Day: testDay}))
	require.NoError(t, ledger.Append(ctx, domain.LedgerEntry{Checksum: "a", Channel: "xqc", Day: testDay}))

	for _, channel := range []string{"forsen", "xqc"} {
		days, err := ledger.IngestedDays(ctx, channel)
		require.NoError(t, err)
		assert.True(t, days.Has(testDay), channel)
	}
}

// emptyFetcher returns a day without messages for every request.
type emptyFetcher struct {
	calls []string
}

func (f *emptyFetcher) Fetch(_ context.Context, channel string, day domain.Day) (*domain.LogPayload, error) {
	f.calls = append(f.calls, channel+"@"+day.String())
	return &domain.LogPayload{Messages: []domain.MessageRecord{}}, nil
}

func TestStore_RerunSkipsEmptyDaysOfEveryChannel(t *testing.T) {
	store := setupTestStore(t)
	fetcher := &emptyFetcher{}
	today := domain.NewDay(2022, time.January, 1)
	orch := services.NewIngestionOrchestrator(fetcher, store, nil, services.FixedClock(today))
	ctx := context.Background()

	for _, channel := range []string{"forsen", "xqc"} {
		_, err := orch.Run(ctx, driving.RunRequest{Channel: channel, Start: domain.NewDay(2021, time.December, 31)})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"forsen@2022/01/01", "xqc@2022/01/01"}, fetcher.calls)

	for _, channel := range []string{"forsen", "xqc"} {
		report, err := orch.Run(ctx, driving.RunRequest{Channel: channel, Start: domain.NewDay(2021, time.December, 31)})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped, channel)
	}
	assert.Len(t, fetcher.calls, 2, "second runs should fetch nothing")
}

func TestMessageID(t *testing.T) {
	id, err := messageID(domain.MessageRecord{Fields: []domain.Field{{Key: "_id", Value: json.RawMessage(`"x"`)}}})
	require.NoError(t, err)
	assert.Equal(t, "x", id)

	id, err = messageID(domain.MessageRecord{Fields: []domain.Field{{Key: "_id", Value: json.RawMessage(`42`)}}})
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = messageID(domain.MessageRecord{})
	assert.Error(t, err)
}
