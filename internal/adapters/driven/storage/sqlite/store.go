package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
	"github.com/custodia-labs/chatlog-backfill/internal/logger"
)

// DefaultFileName is used when the store is given a directory.
const DefaultFileName = "backfill.db"

// dayFormat is how days are stored in TEXT columns.
const dayFormat = time.DateOnly

// Ensure Store implements the interface.
var _ driven.StorageSink = (*Store)(nil)

// Store is a SQLite-based backend holding messages and the ledger.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path.
// If path is empty or names a directory, DefaultFileName is used inside it.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultFileName
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStorage, err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStorage, err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStorage, err)
	}

	logger.Info("Opened SQLite database %s", path)
	return s, nil
}

// Name returns the backend name.
func (s *Store) Name() string {
	return "sqlite"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ledger returns an IngestionLedger backed by this store.
func (s *Store) Ledger() driven.IngestionLedger {
	return &ledger{store: s}
}

// Persist inserts the day's messages in a single transaction.
// Either every message of the day is stored or none is.
func (s *Store) Persist(ctx context.Context, channel string, day domain.Day, payload *domain.LogPayload) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, channel, day, position, body)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for i, msg := range payload.Messages {
		id, err := messageID(msg)
		if err != nil {
			return fmt.Errorf("%w: message %d of %s: %w", domain.ErrStorage, i, day, err)
		}
		body, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("%w: marshalling message %d of %s: %w", domain.ErrStorage, i, day, err)
		}
		if _, err := stmt.ExecContext(ctx, id, channel, day.Time().Format(dayFormat), i, string(body)); err != nil {
			return fmt.Errorf("%w: saving message %s: %w", domain.ErrStorage, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorage, err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		logger.Debug("Applied migration %s", name)
	}

	return nil
}

// applyMigration runs one migration and records its version atomically.
func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// messageID extracts the injected identifier as plain text.
func messageID(msg domain.MessageRecord) (string, error) {
	raw, ok := msg.Get(domain.IDKey)
	if !ok {
		return "", fmt.Errorf("missing %s", domain.IDKey)
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return string(raw), nil //nolint:nilerr // non-string ids are stored verbatim
	}
	return id, nil
}

// ==================== Ledger ====================

// ledger implements driven.IngestionLedger.
type ledger struct {
	store *Store
}

var _ driven.IngestionLedger = (*ledger)(nil)

// IngestedDays returns the days recorded for a channel.
func (l *ledger) IngestedDays(ctx context.Context, channel string) (domain.DaySet, error) {
	rows, err := l.store.db.QueryContext(ctx, "SELECT day FROM ledger WHERE channel = ?", channel)
	if err != nil {
		return nil, fmt.Errorf("%w: querying ledger: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	days := make(domain.DaySet)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: scanning ledger: %w", domain.ErrStorage, err)
		}
		day, err := domain.ParseDay(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: ledger row: %w", domain.ErrStorage, err)
		}
		days.Add(day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ledger: %w", domain.ErrStorage, err)
	}
	return days, nil
}

// Append records an entry. A checksum already recorded for the same channel
// maps to domain.ErrAlreadyExists.
func (l *ledger) Append(ctx context.Context, entry domain.LedgerEntry) error {
	ingestedAt := entry.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	res, err := l.store.db.ExecContext(ctx, `
		INSERT INTO ledger (checksum, channel, day, messages, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(channel, checksum) DO NOTHING
	`, entry.Checksum, entry.Channel, entry.Day.Time().Format(dayFormat), entry.Messages, ingestedAt)
	if err != nil {
		return fmt.Errorf("%w: appending ledger entry: %w", domain.ErrStorage, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: appending ledger entry: %w", domain.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("checksum %s: %w", entry.Checksum, domain.ErrAlreadyExists)
	}
	return nil
}

// Durable reports true.
func (l *ledger) Durable() bool {
	return true
}
