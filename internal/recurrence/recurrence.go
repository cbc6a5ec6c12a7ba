// Package recurrence computes when a recurring puppy appointment is next due.
package recurrence

import (
	"fmt"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

const (
	Vaccination = "vaccination"
	Deworming   = "deworming"
	FleaTick    = "flea-tick"
	Checkup     = "checkup"
	Grooming    = "grooming"
)

type offset struct {
	months int
	days   int
}

var offsets = map[string]offset{
	Vaccination: {days: 21},
	Deworming:   {days: 14},
	FleaTick:    {months: 1},
	Checkup:     {months: 3},
	Grooming:    {days: 42},
}

// fallback applies to "custom" and any type not listed above.
var fallback = offset{months: 1}

// NextDueDate returns base shifted by the interval for typ, as YYYY-MM-DD.
func NextDueDate(base, typ string) (string, error) {
	d, err := time.Parse(model.DateLayout, base)
	if err != nil {
		return "", fmt.Errorf("parse base date %q: %w", base, err)
	}
	return Next(d, typ).Format(model.DateLayout), nil
}

// Next is NextDueDate on a parsed date.
func Next(base time.Time, typ string) time.Time {
	off, ok := offsets[typ]
	if !ok {
		off = fallback
	}
	if off.months != 0 {
		base = addMonths(base, off.months)
	}
	return base.AddDate(0, 0, off.days)
}

// addMonths clamps to the last day of the target month, so Jan 31 + 1 month
// is Feb 28 (or 29), not early March.
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
