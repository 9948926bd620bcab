package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
)

// ledger implements driven.IngestionLedger.
type ledger struct {
	db *mongo.Database
}

var _ driven.IngestionLedger = (*ledger)(nil)

// ledgerDoc is the stored form of a domain.LedgerEntry.
type ledgerDoc struct {
	Checksum   string    `bson:"_id"`
	Date       time.Time `bson:"date"`
	Messages   int       `bson:"messages"`
	IngestedAt time.Time `bson:"ingested_at,omitempty"`
}

// IngestedDays reads the date of every ledger document for the channel.
func (l *ledger) IngestedDays(ctx context.Context, channel string) (domain.DaySet, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "date", Value: 1}})
	cur, err := l.db.Collection(MetadataCollection(channel)).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ledger: %w", domain.ErrStorage, err)
	}
	defer cur.Close(ctx)

	days := make(domain.DaySet)
	for cur.Next(ctx) {
		var doc ledgerDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decoding ledger entry: %w", domain.ErrStorage, err)
		}
		days.Add(domain.DayOf(doc.Date.UTC()))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading ledger: %w", domain.ErrStorage, err)
	}
	return days, nil
}

// Append inserts the entry. A duplicate checksum maps to domain.ErrAlreadyExists.
func (l *ledger) Append(ctx context.Context, entry domain.LedgerEntry) error {
	doc := ledgerDoc{
		Checksum:   entry.Checksum,
		Date:       entry.Day.Time(),
		Messages:   entry.Messages,
		IngestedAt: entry.IngestedAt,
	}
	if _, err := l.db.Collection(MetadataCollection(entry.Channel)).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("checksum %s: %w", entry.Checksum, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("%w: appending ledger entry: %w", domain.ErrStorage, err)
	}
	return nil
}

// Durable reports true.
func (l *ledger) Durable() bool {
	return true
}
