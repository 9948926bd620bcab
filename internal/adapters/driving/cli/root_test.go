package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/logger"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["ingest"])
	assert.True(t, names["status"])
	assert.True(t, names["version"])
}

func TestRootCmd_SharedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for name, short := range map[string]string{
		"database-name":  "d",
		"channel-name":   "c",
		"start-from-day": "f",
		"output-dir":     "o",
		"verbose":        "v",
	} {
		f := flags.Lookup(name)
		if assert.NotNil(t, f, name) {
			assert.Equal(t, short, f.Shorthand, name)
		}
	}
	assert.NotNil(t, flags.Lookup("compact"))
	assert.NotNil(t, flags.Lookup("sqlite"))
	assert.NotNil(t, flags.Lookup("config"))
}

func TestRootCmd_UnknownFlagIsConfigurationError(t *testing.T) {
	h := setupCLITest(t, nil)

	err := h.execute("ingest", "--no-such-flag")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, ExitConfiguration, ExitCode(err))
}

func TestRootCmd_VerboseEnablesLogger(t *testing.T) {
	h := setupCLITest(t, nil)
	defer logger.SetVerbose(false)

	assert.NoError(t, h.execute("version", "--verbose"))
	assert.True(t, logger.IsVerbose())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"fetch", fmt.Errorf("day: %w", domain.ErrFetch), ExitFailure},
		{"storage", fmt.Errorf("day: %w", domain.ErrStorage), ExitFailure},
		{"unknown", errors.New("boom"), ExitFailure},
		{"configuration", fmt.Errorf("%w: missing channel", domain.ErrConfiguration), ExitConfiguration},
		{"invalid input", fmt.Errorf("%w: bad date", domain.ErrInvalidInput), ExitConfiguration},
		{"interrupted", fmt.Errorf("%w before day", domain.ErrInterrupted), ExitInterrupted},
		{"cancelled context", fmt.Errorf("connect: %w", context.Canceled), ExitInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
