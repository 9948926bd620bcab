package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/logsapi"
	"github.com/custodia-labs/chatlog-backfill/internal/config"
	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driving"
)

var ingestDryRun bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and store every missing day",
	Long: `Fetches each day after --start-from-day up to and including today and
stores it in the configured backend.

Days are processed in order and the run stops at the first failure.
Days stored before the failure stay stored; re-run to continue.`,
	Example: `  backfill ingest -c forsen -f 2022/1/1 --sqlite logs.db
  MONGODB_CONNECTION_STRING=mongodb://localhost backfill ingest -d twitch -c forsen -f 2022/1/1`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "List the days that would be fetched without fetching them")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	return withService(cmd, func(svc driving.IngestionService, cfg *config.Config) error {
		progress := newProgressPrinter(cmd.OutOrStdout())

		report, err := svc.Run(cmd.Context(), driving.RunRequest{
			Channel:  cfg.Channel,
			Start:    cfg.Start(),
			DryRun:   ingestDryRun,
			Observer: progress,
		})
		progress.Finish()

		if report != nil {
			printReport(cmd, report, ingestDryRun)
		}
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInterrupted):
				cmd.PrintErrln(styles.Warning.Render("Interrupted. The unfinished day will be retried on the next run."))
			case logsapi.IsNotFound(err):
				cmd.PrintErrln(styles.Warning.Render(fmt.Sprintf(
					"The logs API has no logs for %s on that day. Check the channel name and start day.", cfg.Channel)))
			}
			return fmt.Errorf("ingest %s: %w", cfg.Channel, err)
		}
		return nil
	})
}

func printReport(cmd *cobra.Command, report *driving.RunReport, dryRun bool) {
	if dryRun {
		cmd.Printf("%s %d of %d days would be fetched for %s (%s backend)\n",
			styles.Title.Render("Dry run:"), len(report.Pending), report.Planned, report.Channel, report.Backend)
		for _, day := range report.Pending {
			cmd.Printf("  %s\n", day)
		}
		return
	}

	if report.Planned == 0 {
		cmd.Printf("Nothing to do: %s is up to date through %s.\n", report.Channel, report.Today)
		return
	}
	cmd.Printf("%s %d days, %d messages stored in %s; %d days already ingested.\n",
		styles.Success.Render("Ingested"), report.Ingested, report.Messages, report.Backend, report.Skipped)
}
