package driven

import "github.com/custodia-labs/chatlog-backfill/internal/core/domain"

// Clock supplies the current date. Runs read it once so that "today"
// stays fixed for the whole run.
type Clock interface {
	Today() domain.Day
}

// IDGenerator produces globally unique message identifiers.
type IDGenerator interface {
	NewID() string
}
