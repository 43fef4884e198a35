// Package schedule expands weekly lesson recurrences into calendar dates.
//
// Dates are civil dates represented as time.Time values at midnight UTC.
// Recurrences repeat on a single weekday between two inclusive bounds.
package schedule

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// Recurrence is a lesson meeting every DayOfWeek between StartDate and
// EndDate inclusive.
type Recurrence struct {
	DayOfWeek string
	StartDate time.Time
	EndDate   time.Time
}

// ParseDate parses a canonical YYYY-MM-DD date. The value must round-trip,
// so inputs such as 2024-02-30 or 2024-2-3 are rejected.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	if t.Format(DateLayout) != raw {
		return time.Time{}, fmt.Errorf("parse date %q: not canonical", raw)
	}
	return t, nil
}

// FormatDate renders a date in canonical form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to its civil date in t's own location and returns it at
// midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseWeekday resolves an English weekday name, ignoring case and
// surrounding whitespace.
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) {
			return d, true
		}
	}
	return time.Sunday, false
}

// ParseClock parses a time of day in HH:MM or HH:MM:SS form and returns the
// offset from midnight.
func ParseClock(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	layout := "15:04:05"
	if strings.Count(raw, ":") == 1 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", raw, err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// Window returns the intersection of the recurrence bounds and the optional
// from/to filter. ok is false when the intersection is empty.
func (r Recurrence) Window(from, to *time.Time) (start, end time.Time, ok bool) {
	start, end = Day(r.StartDate), Day(r.EndDate)
	if from != nil && Day(*from).After(start) {
		start = Day(*from)
	}
	if to != nil && Day(*to).Before(end) {
		end = Day(*to)
	}
	return start, end, !end.Before(start)
}

// Expand yields, in ascending order, every date inside the effective window
// that falls on the recurrence weekday. The sequence holds no state between
// iterations and can be ranged over any number of times.
func Expand(r Recurrence, from, to *time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		weekday, ok := ParseWeekday(r.DayOfWeek)
		if !ok {
			return
		}
		start, end, ok := r.Window(from, to)
		if !ok {
			return
		}
		offset := (int(weekday) - int(start.Weekday()) + 7) % 7
		for d := start.AddDate(0, 0, offset); !d.After(end); d = d.AddDate(0, 0, 7) {
			if !yield(d) {
				return
			}
		}
	}
}

// Occurs reports whether date is one of the recurrence's occurrences.
func Occurs(r Recurrence, date time.Time) bool {
	weekday, ok := ParseWeekday(r.DayOfWeek)
	if !ok {
		return false
	}
	date = Day(date)
	if date.Before(Day(r.StartDate)) || date.After(Day(r.EndDate)) {
		return false
	}
	return date.Weekday() == weekday
}

// Collect drains a sequence into a slice.
func Collect(seq iter.Seq[time.Time]) []time.Time {
	var out []time.Time
	for d := range seq {
		out = append(out, d)
	}
	return out
}
