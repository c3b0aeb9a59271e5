package clock

import (
	"fmt"
	"strings"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM". Keys compare
// lexicographically in chronological order, which is what the rollover
// engine's "is this a new month" check relies on.
type MonthKey string

const monthKeyLayout = "2006-01"

// DateLayout is the calendar-day format used for all date strings.
const DateLayout = "2006-01-02"

func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.UTC().Format(monthKeyLayout))
}

func ParseMonthKey(s string) (MonthKey, error) {
	if _, err := time.Parse(monthKeyLayout, s); err != nil {
		return "", fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthKey(s), nil
}

func (k MonthKey) String() string {
	return string(k)
}

// Prev returns the immediately preceding month, rolling the year backward
// when the month is January.
func (k MonthKey) Prev() MonthKey {
	t, err := time.Parse(monthKeyLayout, string(k))
	if err != nil {
		return k
	}
	return MonthKey(t.AddDate(0, -1, 0).Format(monthKeyLayout))
}

// Contains reports whether the given calendar date string falls within this
// month. It is a prefix match on the year-month portion, mirroring how
// expense dates are grouped.
func (k MonthKey) Contains(date string) bool {
	return strings.HasPrefix(date, string(k))
}

// DisplayName renders the key for humans, e.g. "January 2025".
func (k MonthKey) DisplayName() string {
	t, err := time.Parse(monthKeyLayout, string(k))
	if err != nil {
		return string(k)
	}
	return t.Format("January 2006")
}
