package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spending record. Date is a calendar day string
// ("YYYY-MM-DD"); monthly grouping is a prefix match on it.
type Expense struct {
	ID          string
	UserKey     string
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        string
	Recurring   bool
	CreatedAt   time.Time
}

// MonthSummary aggregates a month's spending against its budget.
type MonthSummary struct {
	Month      string
	Total      decimal.Decimal
	Budget     decimal.Decimal
	Remaining  decimal.Decimal
	ByCategory map[string]decimal.Decimal
	Count      int
}
