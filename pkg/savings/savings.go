package savings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bachat/bachat/pkg/clock"
)

var ErrNotFound = errors.New("savings entry not found")

// Entry is one savings deposit. Auto-rollover entries are created by the
// month-end rollover and carry the month whose leftover budget they
// represent; manual entries leave FromMonth empty.
type Entry struct {
	ID             string
	UserKey        string
	Amount         decimal.Decimal
	Description    string
	Date           string
	IsAutoRollover bool
	FromMonth      clock.MonthKey
	CreatedAt      time.Time
}

// Summary is the savings overview: the running total, how it splits
// between manual deposits and auto-rollovers, and progress toward the
// goal when one is set.
type Summary struct {
	Total          decimal.Decimal
	ManualTotal    decimal.Decimal
	RolloverTotal  decimal.Decimal
	MonthlyAverage decimal.Decimal
	EntryCount     int
	Goal           decimal.Decimal
	GoalSet        bool
	GoalProgress   decimal.Decimal
}
