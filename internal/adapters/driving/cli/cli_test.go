package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatlog-backfill/internal/config"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driving"
)

// mockIngestionService implements driving.IngestionService for testing.
type mockIngestionService struct {
	runReq    driving.RunRequest
	report    *driving.RunReport
	runErr    error
	status    *driving.RangeStatus
	statusErr error
}

func (m *mockIngestionService) Run(_ context.Context, req driving.RunRequest) (*driving.RunReport, error) {
	m.runReq = req
	return m.report, m.runErr
}

func (m *mockIngestionService) Status(_ context.Context, req driving.RunRequest) (*driving.RangeStatus, error) {
	m.runReq = req
	return m.status, m.statusErr
}

// cliHarness captures what a command execution did.
type cliHarness struct {
	out     *bytes.Buffer
	cfg     *config.Config
	opened  bool
	closed  bool
	service *mockIngestionService
}

var configEnv = []string{
	"MONGODB_CONNECTION_STRING", "BACKFILL_DATABASE", "BACKFILL_CHANNEL",
	"BACKFILL_START", "BACKFILL_COMPACT", "BACKFILL_OUTPUT_DIR",
	"BACKFILL_SQLITE_PATH", "BACKFILL_BASE_URL", "BACKFILL_RATE",
	"BACKFILL_TIMEOUT", "BACKFILL_TIMEZONE",
}

// setupCLITest isolates the command tree from the environment, the working
// directory and earlier executions, and installs svc as the service.
func setupCLITest(t *testing.T, svc *mockIngestionService) *cliHarness {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range configEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	h := &cliHarness{out: new(bytes.Buffer), service: svc}
	oldService := newService
	newService = func(_ context.Context, cfg *config.Config) (driving.IngestionService, func() error, error) {
		h.cfg = cfg
		h.opened = true
		return svc, func() error {
			h.closed = true
			return nil
		}, nil
	}

	rootCmd.SetOut(h.out)
	rootCmd.SetErr(h.out)
	t.Cleanup(func() {
		newService = oldService
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd.PersistentFlags(), ingestCmd.Flags(), statusCmd.Flags())
	})
	return h
}

// resetFlags restores defaults so one test's flags never leak into the next.
func resetFlags(sets ...*pflag.FlagSet) {
	for _, set := range sets {
		set.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func (h *cliHarness) execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
