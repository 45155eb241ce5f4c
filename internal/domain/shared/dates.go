package shared

import (
	"fmt"
	"time"
)

// DateLayout is the canonical wire format for calendar dates
const DateLayout = "2006-01-02"

// DateKey formats a timestamp as its calendar-date key
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a canonical date key into a UTC midnight timestamp
func ParseDate(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}

// ISOWeekKey returns a sortable "year-Wweek" key for a date.
// Weekly driving limits are accounted on ISO week boundaries.
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
