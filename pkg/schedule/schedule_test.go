package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func dates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = FormatDate(t)
	}
	return out
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-02-29")
	assert.NoError(t, err)

	for _, raw := range []string{"2024-02-30", "2023-02-29", "2024-2-3", "2024-01-08T00:00:00Z", "", " 2024-01-08"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseWeekday(t *testing.T) {
	d, ok := ParseWeekday("  monday ")
	require.True(t, ok)
	assert.Equal(t, time.Monday, d)

	d, ok = ParseWeekday("SUNDAY")
	require.True(t, ok)
	assert.Equal(t, time.Sunday, d)

	_, ok = ParseWeekday("Mon")
	assert.False(t, ok)
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Minute, d)

	d, err = ParseClock("10:00:15")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour+15*time.Second, d)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestExpandWithinLessonWindow(t *testing.T) {
	r := Recurrence{DayOfWeek: "Monday", StartDate: mustDate(t, "2024-01-01"), EndDate: mustDate(t, "2024-01-31")}

	got := dates(Collect(Expand(r, nil, nil)))
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}, got)
}

func TestExpandIntersectsFilter(t *testing.T) {
	r := Recurrence{DayOfWeek: "wednesday ", StartDate: mustDate(t, "2024-01-01"), EndDate: mustDate(t, "2024-03-31")}
	from := mustDate(t, "2024-02-01")
	to := mustDate(t, "2024-02-20")

	got := dates(Collect(Expand(r, &from, &to)))
	assert.Equal(t, []string{"2024-02-07", "2024-02-14"}, got)

	for _, d := range Collect(Expand(r, &from, &to)) {
		assert.Equal(t, time.Wednesday, d.Weekday())
		assert.False(t, d.Before(from))
		assert.False(t, d.After(to))
	}
}

func TestExpandEmptyWindow(t *testing.T) {
	r := Recurrence{DayOfWeek: "Monday", StartDate: mustDate(t, "2024-01-01"), EndDate: mustDate(t, "2024-01-31")}
	from := mustDate(t, "2024-03-01")

	assert.Empty(t, Collect(Expand(r, &from, nil)))

	inverted := Recurrence{DayOfWeek: "Monday", StartDate: mustDate(t, "2024-02-01"), EndDate: mustDate(t, "2024-01-01")}
	assert.Empty(t, Collect(Expand(inverted, nil, nil)))
}

func TestExpandUnknownWeekday(t *testing.T) {
	r := Recurrence{DayOfWeek: "Funday", StartDate: mustDate(t, "2024-01-01"), EndDate: mustDate(t, "2024-01-31")}
	assert.Empty(t, Collect(Expand(r, nil, nil)))
}

func TestExpandIsRestartableAndAscending(t *testing.T) {
	r := Recurrence{DayOfWeek: "Friday", StartDate: mustDate(t, "2023-12-01"), EndDate: mustDate(t, "2024-06-30")}
	seq := Expand(r, nil, nil)

	first := Collect(seq)
	second := Collect(seq)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i].After(first[i-1]))
	}
}

func TestExpandEarlyBreak(t *testing.T) {
	r := Recurrence{DayOfWeek: "Monday", StartDate: mustDate(t, "2024-01-01"), EndDate: mustDate(t, "2024-12-31")}
	count := 0
	for range Expand(r, nil, nil) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestOccursMatchesExpand(t *testing.T) {
	r := Recurrence{DayOfWeek: "Monday", StartDate: mustDate(t, "2024-01-01"), EndDate: mustDate(t, "2024-01-31")}
	occurrences := map[string]bool{}
	for d := range Expand(r, nil, nil) {
		occurrences[FormatDate(d)] = true
	}

	for d := mustDate(t, "2023-12-20"); d.Before(mustDate(t, "2024-02-10")); d = d.AddDate(0, 0, 1) {
		assert.Equal(t, occurrences[FormatDate(d)], Occurs(r, d), FormatDate(d))
	}
}

func TestWindow(t *testing.T) {
	r := Recurrence{DayOfWeek: "Monday", StartDate: mustDate(t, "2024-01-01"), EndDate: mustDate(t, "2024-01-31")}
	to := mustDate(t, "2024-01-10")

	start, end, ok := r.Window(nil, &to)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", FormatDate(start))
	assert.Equal(t, "2024-01-10", FormatDate(end))
}
