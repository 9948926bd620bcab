package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/storage/mongostore"
	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
)

// Kind identifies a storage backend.
type Kind string

// Backend kinds.
const (
	KindMongo  Kind = "mongo"
	KindSQLite Kind = "sqlite"
	KindFile   Kind = "file"
)

// Options carries the configuration every backend may need.
type Options struct {
	// MongoURI selects the MongoDB backend when non-empty.
	MongoURI string

	// Database is the MongoDB database name. Required with MongoURI.
	Database string

	// SQLitePath selects the SQLite backend when non-empty and MongoURI is empty.
	SQLitePath string

	// OutputDir is the root directory of the file backend.
	OutputDir string

	// Compact writes single-line JSON files.
	Compact bool
}

// Resolve returns the backend implied by opts.
func Resolve(opts Options) Kind {
	switch {
	case opts.MongoURI != "":
		return KindMongo
	case opts.SQLitePath != "":
		return KindSQLite
	default:
		return KindFile
	}
}

// Validate reports configuration errors before any connection is made.
func Validate(opts Options) error {
	if Resolve(opts) == KindMongo && opts.Database == "" {
		return fmt.Errorf("%w: a MongoDB connection string is set but no database name was given",
			domain.ErrConfiguration)
	}
	return nil
}

// Open validates opts and opens the selected backend.
func Open(ctx context.Context, opts Options) (driven.StorageSink, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	switch kind := Resolve(opts); kind {
	case KindMongo:
		return mongostore.Connect(ctx, opts.MongoURI, opts.Database)
	case KindSQLite:
		return sqlite.NewStore(opts.SQLitePath)
	case KindFile:
		return file.NewSink(opts.OutputDir, opts.Compact), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrConfiguration, kind)
	}
}
