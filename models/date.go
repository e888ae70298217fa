package models

import (
	"fmt"
	"time"
)

// DateKeyLayout is the calendar-day key format used across the application:
// day, month, four-digit year, e.g. "10-05-2024".
const DateKeyLayout = "02-01-2006"

// DateKey identifies a single calendar day. It is the primary key of a note
// within one vault.
type DateKey string

// ParseDateKey validates raw against [DateKeyLayout] and returns it as a
// DateKey. Returns an error if raw is not a valid calendar day.
func ParseDateKey(raw string) (DateKey, error) {
	if _, err := time.Parse(DateKeyLayout, raw); err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", raw, err)
	}
	return DateKey(raw), nil
}

// DateKeyFor returns the DateKey for the calendar day of t.
func DateKeyFor(t time.Time) DateKey {
	return DateKey(t.Format(DateKeyLayout))
}

// Year returns the four-digit year of the key, or 0 if the key is malformed.
func (d DateKey) Year() int {
	t, err := time.Parse(DateKeyLayout, string(d))
	if err != nil {
		return 0
	}
	return t.Year()
}

func (d DateKey) String() string {
	return string(d)
}
