package domain

import "time"

// LedgerEntry is durable proof that a day was ingested.
// Entries are created once and never mutated or deleted.
type LedgerEntry struct {
	// Checksum is the digest of the untransformed payload. It is the primary key.
	Checksum string

	// Channel is the channel the day belongs to.
	Channel string

	// Day is the ingested calendar day.
	Day Day

	// Messages is the number of messages persisted for the day.
	Messages int

	// IngestedAt is when the entry was recorded.
	IngestedAt time.Time
}
