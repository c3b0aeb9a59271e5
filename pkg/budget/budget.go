package budget

import (
	"github.com/shopspring/decimal"

	"github.com/bachat/bachat/pkg/clock"
)

// Budget is the spending allowance for one calendar month. At most one value
// exists per (user, month); setting again overwrites. There is no deletion
// path.
type Budget struct {
	UserKey string
	Month   clock.MonthKey
	Amount  decimal.Decimal
}
