package mongostore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
	"github.com/custodia-labs/chatlog-backfill/internal/logger"
)

const (
	// MetadataSuffix is appended to a channel name to form its ledger collection.
	MetadataSuffix = "_metadata"

	connectTimeout    = 10 * time.Second
	pingTimeout       = 5 * time.Second
	disconnectTimeout = 5 * time.Second
)

// Ensure Store implements the interface.
var _ driven.StorageSink = (*Store)(nil)

// Store persists messages and ledger entries in MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB, verifies the connection and returns a store
// bound to the named database. The store owns the client.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: MongoDB connection string is empty", domain.ErrConfiguration)
	}
	if database == "" {
		return nil, fmt.Errorf("%w: MongoDB database name is empty", domain.ErrConfiguration)
	}

	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to MongoDB: %w", domain.ErrStorage, err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctxPing, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: pinging MongoDB: %w", domain.ErrStorage, err)
	}

	logger.Info("Connected to MongoDB database %s", database)
	return &Store{client: client, db: client.Database(database)}, nil
}

// New wraps an existing database handle. The caller keeps ownership of
// the client; Close does not disconnect it.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Name returns the backend name.
func (s *Store) Name() string {
	return "mongo"
}

// Persist inserts all of the day's messages into the channel collection
// with one InsertMany. A day without messages inserts nothing.
func (s *Store) Persist(ctx context.Context, channel string, day domain.Day, payload *domain.LogPayload) error {
	if len(payload.Messages) == 0 {
		return nil
	}

	docs := make([]any, 0, len(payload.Messages))
	for i := range payload.Messages {
		doc, err := toDocument(payload.Messages[i])
		if err != nil {
			return fmt.Errorf("%w: message %d of %s: %w", domain.ErrStorage, i, day, err)
		}
		docs = append(docs, doc)
	}

	res, err := s.db.Collection(channel).InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("%w: inserting %d messages into %s: %w", domain.ErrStorage, len(docs), channel, err)
	}

	logger.Debug("Inserted %d messages into %s.%s", len(res.InsertedIDs), s.db.Name(), channel)
	return nil
}

// Ledger returns the ledger backed by the <channel>_metadata collections.
func (s *Store) Ledger() driven.IngestionLedger {
	return &ledger{db: s.db}
}

// Close disconnects the client if the store owns it.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// toDocument converts an ordered JSON record to an ordered BSON document.
func toDocument(msg domain.MessageRecord) (bson.D, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// MetadataCollection returns the ledger collection name for a channel.
func MetadataCollection(channel string) string {
	return channel + MetadataSuffix
}
