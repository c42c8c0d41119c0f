// Package duration parses the date thresholds used by search filters.
package duration

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day layout GitHub search qualifiers expect.
const DateLayout = "2006-01-02"

// ParseDate parses either an absolute date ("2022-09-01") or a relative age
// such as "30d", "6mo" or "5y", which is resolved against now. The result is
// truncated to a UTC calendar day. An empty string yields the zero time.
func ParseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}

	var n int
	var unit string
	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil || n < 0 {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or an age like 30d, 6mo, 5y)", s)
	}

	var t time.Time
	switch unit {
	case "d", "day", "days":
		t = now.AddDate(0, 0, -n)
	case "w", "wk", "wks", "week", "weeks":
		t = now.AddDate(0, 0, -7*n)
	case "mo", "month", "months":
		t = now.AddDate(0, -n, 0)
	case "y", "yr", "yrs", "year", "years":
		t = now.AddDate(-n, 0, 0)
	default:
		return time.Time{}, fmt.Errorf("unknown age unit %q in %q", unit, s)
	}

	return Day(t), nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders a date for a search qualifier; the zero time renders empty.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
