package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatlog-backfill/internal/config"
)

// configFlags holds the flags shared by every command that touches storage.
// Flags override the config file and environment only when given.
var configFlags struct {
	configPath string
	database   string
	channel    string
	startFrom  string
	compact    bool
	outputDir  string
	sqlitePath string
	baseURL    string
	rate       float64
	timeout    string
	timezone   string
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&configFlags.configPath, "config", "", "Path to a TOML config file (default ./"+config.DefaultFile+" if present)")
	f.StringVarP(&configFlags.database, "database-name", "d", "", "MongoDB database name")
	f.StringVarP(&configFlags.channel, "channel-name", "c", "", "Channel to backfill")
	f.StringVarP(&configFlags.startFrom, "start-from-day", "f", "", "Start day, exclusive (YYYY/M/D)")
	f.BoolVar(&configFlags.compact, "compact", false, "Write single-line JSON files")
	f.StringVarP(&configFlags.outputDir, "output-dir", "o", "", "Root directory for JSON files")
	f.StringVar(&configFlags.sqlitePath, "sqlite", "", "Store logs in this SQLite database")
	f.StringVar(&configFlags.baseURL, "base-url", "", "Logs API base URL")
	f.Float64Var(&configFlags.rate, "rate", 0, "Maximum requests per second (0 = unlimited)")
	f.StringVar(&configFlags.timeout, "timeout", "", "Per-request timeout, e.g. 30s")
	f.StringVar(&configFlags.timezone, "timezone", "", "IANA zone that decides today's date")
}

// loadConfig layers file, environment and flags, then validates.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFlags.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	overrides := []struct {
		name  string
		apply func()
	}{
		{"database-name", func() { cfg.Database = configFlags.database }},
		{"channel-name", func() { cfg.Channel = configFlags.channel }},
		{"start-from-day", func() { cfg.StartFrom = configFlags.startFrom }},
		{"compact", func() { cfg.Compact = configFlags.compact }},
		{"output-dir", func() { cfg.OutputDir = configFlags.outputDir }},
		{"sqlite", func() { cfg.SQLitePath = configFlags.sqlitePath }},
		{"base-url", func() { cfg.BaseURL = configFlags.baseURL }},
		{"rate", func() { cfg.RequestsPerSecond = configFlags.rate }},
		{"timeout", func() { cfg.Timeout = configFlags.timeout }},
		{"timezone", func() { cfg.Timezone = configFlags.timezone }},
	}
	for _, o := range overrides {
		if flags.Changed(o.name) {
			o.apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
