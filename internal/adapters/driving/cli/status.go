package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatlog-backfill/internal/config"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driving"
)

var statusList bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which days are already ingested",
	Long: `Reads the ledger and reports which days between --start-from-day and today
are ingested and which are missing. Nothing is fetched.

The file backend keeps no ledger, so every day is reported as missing.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusList, "list", false, "List every missing day")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withService(cmd, func(svc driving.IngestionService, cfg *config.Config) error {
		status, err := svc.Status(cmd.Context(), driving.RunRequest{
			Channel: cfg.Channel,
			Start:   cfg.Start(),
		})
		if err != nil {
			return err
		}

		cmd.Println(styles.Title.Render("Channel " + status.Channel))
		cmd.Printf("Backend:  %s\n", status.Backend)
		if !status.Durable {
			cmd.Println(styles.Warning.Render("No ledger: every run rewrites every day."))
		}
		cmd.Printf("Through:  %s\n", status.Today)
		cmd.Printf("Ingested: %d days\n", len(status.Ingested))
		cmd.Printf("Missing:  %d days\n", len(status.Missing))

		if len(status.Missing) == 0 {
			return nil
		}
		if statusList {
			for _, day := range status.Missing {
				cmd.Printf("  %s\n", day)
			}
			return nil
		}
		cmd.Println(styles.Muted.Render("First missing: " + status.Missing[0].String()))
		return nil
	})
}
