package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/logsapi"
	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/storage"
	"github.com/custodia-labs/chatlog-backfill/internal/config"
	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driving"
	"github.com/custodia-labs/chatlog-backfill/internal/core/services"
	"github.com/custodia-labs/chatlog-backfill/internal/logger"
)

// Exit codes returned by the backfill binary.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitInterrupted   = 130
)

var version = "dev"

var verbose bool

// serviceFactory builds the ingestion service for validated settings.
// The returned close function releases the storage backend.
type serviceFactory func(ctx context.Context, cfg *config.Config) (driving.IngestionService, func() error, error)

// newService is replaced in tests.
var newService serviceFactory = openService

var rootCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill chat logs from logs.ivr.fi",
	Long: `Backfill downloads a channel's chat logs one day at a time and stores them
in MongoDB, SQLite or per-day JSON files.

The MongoDB and SQLite backends keep a ledger of ingested days, so re-running
only fetches days that are missing. The file backend rewrites every day.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print diagnostic output to stderr")
	addConfigFlags(rootCmd)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	})
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. Cancelling ctx interrupts a run between days.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrInterrupted), errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrInvalidInput):
		return ExitConfiguration
	default:
		return ExitFailure
	}
}

// openService opens the configured backend and wires the orchestrator.
func openService(ctx context.Context, cfg *config.Config) (driving.IngestionService, func() error, error) {
	sink, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Storage backend: %s", sink.Name())

	fetcher := logsapi.NewClient(cfg.FetchOptions())
	clock := services.SystemClock{Location: cfg.Location()}
	return services.NewIngestionOrchestrator(fetcher, sink, nil, clock), sink.Close, nil
}

// withService loads settings, opens the service and runs fn with it.
func withService(cmd *cobra.Command, fn func(driving.IngestionService, *config.Config) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	svc, closeFn, err := newService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			logger.Warn("Closing storage: %v", cerr)
		}
	}()

	return fn(svc, cfg)
}
