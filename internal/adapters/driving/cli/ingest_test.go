package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/logsapi"
	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/storage"
	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driving"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest", ingestCmd.Use)
}

func TestIngestCmd_Short(t *testing.T) {
	assert.Equal(t, "Fetch and store every missing day", ingestCmd.Short)
}

func TestIngestCmd_PassesFlagsToService(t *testing.T) {
	svc := &mockIngestionService{report: &driving.RunReport{
		Channel: "forsen", Backend: "file", Planned: 3, Ingested: 2, Skipped: 1, Messages: 40,
	}}
	h := setupCLITest(t, svc)

	err := h.execute("ingest", "-c", "forsen", "-f", "2022/1/1", "-o", "out", "--compact")

	require.NoError(t, err)
	assert.Equal(t, "forsen", svc.runReq.Channel)
	assert.Equal(t, domain.NewDay(2022, time.January, 1), svc.runReq.Start)
	assert.False(t, svc.runReq.DryRun)
	assert.NotNil(t, svc.runReq.Observer)

	assert.Equal(t, "out", h.cfg.OutputDir)
	assert.True(t, h.cfg.Compact)
	assert.Equal(t, storage.KindFile, h.cfg.Backend())
	assert.True(t, h.closed, "storage should be closed after the run")

	assert.Contains(t, h.out.String(), "2 days, 40 messages stored in file; 1 days already ingested")
}

func TestIngestCmd_EnvironmentAndFlagPrecedence(t *testing.T) {
	svc := &mockIngestionService{report: &driving.RunReport{}}
	h := setupCLITest(t, svc)
	t.Setenv("BACKFILL_CHANNEL", "xqc")
	t.Setenv("BACKFILL_START", "2021/6/1")
	t.Setenv("BACKFILL_SQLITE_PATH", "env.db")

	err := h.execute("ingest", "--sqlite", "flag.db")

	require.NoError(t, err)
	assert.Equal(t, "xqc", svc.runReq.Channel)
	assert.Equal(t, domain.NewDay(2021, time.June, 1), svc.runReq.Start)
	assert.Equal(t, "flag.db", h.cfg.SQLitePath)
	assert.Equal(t, storage.KindSQLite, h.cfg.Backend())
}

func TestIngestCmd_ConfigFile(t *testing.T) {
	svc := &mockIngestionService{report: &driving.RunReport{}}
	h := setupCLITest(t, svc)
	require.NoError(t, os.WriteFile("custom.toml", []byte(`
channel_name = "forsen"
start_from_day = "2022-03-01"
mongodb_connection_string = "mongodb://localhost:27017"
database_name = "twitch"
`), 0600))

	err := h.execute("ingest", "--config", "custom.toml")

	require.NoError(t, err)
	assert.Equal(t, storage.KindMongo, h.cfg.Backend())
	assert.Equal(t, domain.NewDay(2022, time.March, 1), svc.runReq.Start)
}

func TestIngestCmd_DryRun(t *testing.T) {
	svc := &mockIngestionService{report: &driving.RunReport{
		Channel: "forsen",
		Backend: "sqlite",
		Planned: 3,
		Pending: []domain.Day{domain.NewDay(2022, time.January, 2), domain.NewDay(2022, time.January, 3)},
	}}
	h := setupCLITest(t, svc)

	err := h.execute("ingest", "-c", "forsen", "-f", "2022/1/1", "--dry-run")

	require.NoError(t, err)
	assert.True(t, svc.runReq.DryRun)
	out := h.out.String()
	assert.Contains(t, out, "2 of 3 days would be fetched for forsen")
	assert.Contains(t, out, "2022/01/02")
	assert.Contains(t, out, "2022/01/03")
}

func TestIngestCmd_NothingToDo(t *testing.T) {
	svc := &mockIngestionService{report: &driving.RunReport{
		Channel: "forsen",
		Today:   domain.NewDay(2022, time.January, 1),
	}}
	h := setupCLITest(t, svc)

	require.NoError(t, h.execute("ingest", "-c", "forsen", "-f", "2022/1/1"))
	assert.Contains(t, h.out.String(), "Nothing to do: forsen is up to date through 2022/01/01.")
}

func TestIngestCmd_MissingChannelIsConfigurationError(t *testing.T) {
	h := setupCLITest(t, &mockIngestionService{})

	err := h.execute("ingest", "-f", "2022/1/1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, ExitConfiguration, ExitCode(err))
	assert.False(t, h.opened, "no backend should be opened for invalid settings")
}

func TestIngestCmd_MongoWithoutDatabaseIsConfigurationError(t *testing.T) {
	h := setupCLITest(t, &mockIngestionService{})
	t.Setenv("MONGODB_CONNECTION_STRING", "mongodb://localhost:27017")

	err := h.execute("ingest", "-c", "forsen", "-f", "2022/1/1")

	assert.Equal(t, ExitConfiguration, ExitCode(err))
	assert.False(t, h.opened)
}

func TestIngestCmd_FetchFailure(t *testing.T) {
	svc := &mockIngestionService{
		report: &driving.RunReport{Channel: "forsen", Backend: "file", Planned: 5, Ingested: 2},
		runErr: fmt.Errorf("day 2022/01/03: %w: status 503", domain.ErrFetch),
	}
	h := setupCLITest(t, svc)

	err := h.execute("ingest", "-c", "forsen", "-f", "2022/1/1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, h.out.String(), "Ingested 2 days")
	assert.True(t, h.closed)
}

func TestIngestCmd_NotFoundDayExplainsFailure(t *testing.T) {
	svc := &mockIngestionService{
		report: &driving.RunReport{Channel: "nobody", Backend: "file", Planned: 2},
		runErr: fmt.Errorf("day 2022/01/02: %w: %w", domain.ErrFetch,
			&logsapi.StatusError{StatusCode: http.StatusNotFound, URL: "https://logs.ivr.fi/channel/nobody/2022/1/2"}),
	}
	h := setupCLITest(t, svc)

	err := h.execute("ingest", "-c", "nobody", "-f", "2022/1/1")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, h.out.String(), "no logs for nobody on that day")
}

func TestIngestCmd_ServerErrorHasNoNotFoundHint(t *testing.T) {
	svc := &mockIngestionService{
		report: &driving.RunReport{Channel: "forsen", Backend: "file", Planned: 2},
		runErr: fmt.Errorf("day 2022/01/02: %w: %w", domain.ErrFetch,
			&logsapi.StatusError{StatusCode: http.StatusBadGateway}),
	}
	h := setupCLITest(t, svc)

	require.Error(t, h.execute("ingest", "-c", "forsen", "-f", "2022/1/1"))
	assert.NotContains(t, h.out.String(), "no logs for")
}

func TestIngestCmd_Interrupted(t *testing.T) {
	svc := &mockIngestionService{
		report: &driving.RunReport{Channel: "forsen", Backend: "file", Planned: 5, Ingested: 1},
		runErr: fmt.Errorf("%w before 2022/01/03: context canceled", domain.ErrInterrupted),
	}
	h := setupCLITest(t, svc)

	err := h.execute("ingest", "-c", "forsen", "-f", "2022/1/1")

	assert.Equal(t, ExitInterrupted, ExitCode(err))
	assert.Contains(t, h.out.String(), "Interrupted")
}

func TestIngestCmd_EndToEndWithFileBackend(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "true", r.URL.Query().Get("json"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"messages":[{"text":"hello from %s"}]}`, r.URL.Path)
	}))
	defer server.Close()

	setupCLITest(t, nil)
	newService = openService
	h := &cliHarness{out: new(bytes.Buffer)}
	rootCmd.SetOut(h.out)

	outDir := t.TempDir()
	start := domain.DayOf(time.Now().UTC().AddDate(0, 0, -2))

	err := h.execute("ingest",
		"-c", "forsen",
		"-f", start.String(),
		"-o", outDir,
		"--base-url", server.URL,
		"--timezone", "UTC",
	)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(outDir, "forsen", "*.json"))
	require.NoError(t, err)
	assert.Len(t, files, requests)
	assert.GreaterOrEqual(t, requests, 2)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"_id"`)
	assert.Contains(t, string(data), "hello from /channel/forsen/")
}
