package services

import (
	"iter"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

// DateRange yields every day after start up to and including today, in
// ascending order. The sequence is empty when start is today or later.
// Each range over the returned sequence starts again from the beginning.
func DateRange(start, today domain.Day) iter.Seq[domain.Day] {
	return func(yield func(domain.Day) bool) {
		for day := start.Next(); !day.After(today); day = day.Next() {
			if !yield(day) {
				return
			}
		}
	}
}
