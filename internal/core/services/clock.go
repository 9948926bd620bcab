package services

import (
	"time"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
)

// Ensure SystemClock implements the interface.
var _ driven.Clock = SystemClock{}

// SystemClock reads the wall clock.
type SystemClock struct {
	// Location decides where "today" is. Defaults to time.Local.
	Location *time.Location
}

// Today returns the current date in the clock's location.
func (c SystemClock) Today() domain.Day {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return domain.DayOf(time.Now().In(loc))
}

// FixedClock always reports the same day.
type FixedClock domain.Day

// Today returns the fixed day.
func (c FixedClock) Today() domain.Day {
	return domain.Day(c)
}
