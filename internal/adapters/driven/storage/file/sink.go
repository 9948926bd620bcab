package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
	"github.com/custodia-labs/chatlog-backfill/internal/logger"
)

// Ensure Sink implements the interface.
var _ driven.StorageSink = (*Sink)(nil)

// Sink writes each day's payload to its own JSON file.
type Sink struct {
	root    string
	compact bool
}

// NewSink creates a file sink rooted at root.
// If root is empty, files are written under the working directory.
// compact selects single-line JSON instead of two-space indentation.
func NewSink(root string, compact bool) *Sink {
	if root == "" {
		root = "."
	}
	return &Sink{root: root, compact: compact}
}

// Name returns the backend name.
func (s *Sink) Name() string {
	return "file"
}

// Path returns the file a day is written to.
func (s *Sink) Path(channel string, day domain.Day) string {
	return filepath.Join(s.root, channel, day.FileName()+".json")
}

// Persist writes the full payload, replacing any previous file for the day.
// The file is written to a temporary name first and renamed into place.
func (s *Sink) Persist(_ context.Context, channel string, day domain.Day, payload *domain.LogPayload) error {
	if err := validateChannel(channel); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if s.compact {
		data, err = json.Marshal(payload)
	} else {
		data, err = json.MarshalIndent(payload, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", domain.ErrStorage, day, err)
	}
	data = append(data, '\n')

	dir := filepath.Join(s.root, channel)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory: %w", domain.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+day.FileName()+"-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing %s: %w", domain.ErrStorage, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", domain.ErrStorage, tmpName, err)
	}

	path := s.Path(channel, day)
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: renaming to %s: %w", domain.ErrStorage, path, err)
	}

	logger.Debug("Wrote %s (%d bytes)", path, len(data))
	return nil
}

// Ledger returns a ledger that never records anything.
func (s *Sink) Ledger() driven.IngestionLedger {
	return NullLedger{}
}

// Close is a no-op.
func (s *Sink) Close() error {
	return nil
}

func validateChannel(channel string) error {
	if channel == "" || channel == "." || channel == ".." ||
		strings.ContainsAny(channel, `/\`) {
		return fmt.Errorf("%w: %w: channel %q is not a valid directory name",
			domain.ErrStorage, domain.ErrInvalidInput, channel)
	}
	return nil
}
