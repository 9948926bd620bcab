// Package mongostore provides the MongoDB storage backend.
//
// Each channel maps to two collections in the configured database:
//
//   - <channel>: one document per message, keyed by the injected _id
//   - <channel>_metadata: the ingestion ledger, one document per day
//     {_id: checksum, date: <day at 00:00 UTC>, messages: <count>}
//
// The ledger makes runs idempotent: days present in <channel>_metadata
// are never fetched again.
package mongostore
