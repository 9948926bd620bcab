package domain

import (
	"fmt"
	"strings"
	"time"
)

// dayLayouts are the accepted input forms for a Day.
// Go's single-digit month/day verbs also accept zero-padded values.
var dayLayouts = []string{"2006/1/2", "2006-1-2"}

// Day is a calendar date targeted for ingestion.
// It carries no time of day and no location; the zero value is not a valid day.
type Day struct {
	year  int
	month time.Month
	day   int
}

// NewDay returns the Day for the given date.
// Out-of-range values are normalised the way time.Date normalises them.
func NewDay(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DayOf returns the calendar date of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

// ParseDay parses a date in YYYY/M/D form, with or without zero padding.
// YYYY-MM-DD is accepted as well.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DayOf(t), nil
		}
	}
	return Day{}, fmt.Errorf("%w: date %q is not in YYYY/M/D form", ErrInvalidInput, s)
}

// Year returns the year of the day.
func (d Day) Year() int { return d.year }

// Month returns the month of the day.
func (d Day) Month() time.Month { return d.month }

// DayOfMonth returns the day of the month.
func (d Day) DayOfMonth() int { return d.day }

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d == Day{} }

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return DayOf(d.Time().AddDate(0, 0, 1))
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is later than other.
func (d Day) After(other Day) bool {
	return d.Time().After(other.Time())
}

// Path returns the unpadded yyyy/m/d form used by the logs API.
func (d Day) Path() string {
	return fmt.Sprintf("%d/%d/%d", d.year, int(d.month), d.day)
}

// FileName returns the yyyy-mm-dd form used for per-day files.
func (d Day) FileName() string {
	return d.Time().Format(time.DateOnly)
}

// String returns the zero-padded yyyy/mm/dd form.
func (d Day) String() string {
	return d.Time().Format("2006/01/02")
}

// DaySet is a set of days, used for the already-ingested lookup.
type DaySet map[Day]struct{}

// NewDaySet creates a set containing the given days.
func NewDaySet(days ...Day) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

// Add inserts a day into the set.
func (s DaySet) Add(d Day) {
	s[d] = struct{}{}
}

// Has reports whether the set contains d. A nil set contains nothing.
func (s DaySet) Has(d Day) bool {
	_, ok := s[d]
	return ok
}
