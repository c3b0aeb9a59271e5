package rollover

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/internal/event_bus"
	"github.com/bachat/bachat/pkg/budget"
	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/expense"
	"github.com/bachat/bachat/pkg/savings"
	"github.com/bachat/bachat/pkg/user"
)

// Result describes what one rollover check did.
type Result struct {
	Applied   bool
	FromMonth clock.MonthKey
	Amount    decimal.Decimal
	EntryID   string
}

type Service interface {
	// Check runs the monthly rollover if it is due: when the month has
	// changed since the last check, the previous month's unspent budget
	// becomes a savings entry, exactly once per month.
	Check(ctx context.Context) (Result, error)
	// CheckMonthlyRollover is Check for callers that only need the
	// trigger, such as the savings listing.
	CheckMonthlyRollover(ctx context.Context) error
	// Reset clears the user's rollover bookkeeping and immediately runs
	// the check again from the clean slate. Dev tooling only.
	Reset(ctx context.Context) (Result, error)
}

type ServiceImpl struct {
	markers  MarkerRepo
	budgets  budget.Service
	expenses expense.Service
	savings  savings.Service
	clock    *clock.Provider
	bus      *event_bus.EventBus
}

func NewService(
	markers MarkerRepo,
	budgets budget.Service,
	expenses expense.Service,
	savingsService savings.Service,
	clockProvider *clock.Provider,
	bus *event_bus.EventBus,
) *ServiceImpl {
	return &ServiceImpl{
		markers:  markers,
		budgets:  budgets,
		expenses: expenses,
		savings:  savingsService,
		clock:    clockProvider,
		bus:      bus,
	}
}

func (s *ServiceImpl) CheckMonthlyRollover(ctx context.Context) error {
	_, err := s.Check(ctx)
	return err
}

// Check is deliberately non-fatal: a rollover that cannot run right now
// stays unclaimed and runs on a later check instead. Only the bookkeeping
// reads can return an error, and callers treat even that as advisory.
func (s *ServiceImpl) Check(ctx context.Context) (Result, error) {
	scope := user.ScopeFrom(ctx)
	userKey := scope.Key()
	now := s.clock.Now()
	currentMonth := s.clock.CurrentMonth()

	lastCheck, err := s.markers.LastCheck(ctx, userKey)
	if err != nil {
		return Result{}, err
	}
	if lastCheck != "" && strings.HasPrefix(lastCheck, currentMonth.String()) {
		return Result{}, nil
	}

	previousMonth := currentMonth.Prev()

	processed, err := s.markers.IsProcessed(ctx, userKey, previousMonth)
	if err != nil {
		return Result{}, err
	}
	if processed {
		return Result{}, s.markers.SetLastCheck(ctx, userKey, now)
	}

	result, settled := s.processMonth(ctx, userKey, previousMonth, now)
	if !settled {
		// The month is neither claimed nor processed; leaving the
		// last-check untouched lets the next check retry it.
		return result, nil
	}

	if err := s.markers.SetLastCheck(ctx, userKey, now); err != nil {
		log.Warnf("could not record rollover check for user %s: %v", userKey, err)
	}
	return result, nil
}

// processMonth moves the month's leftover budget into savings. The
// processed marker is claimed before the savings entry is written, so a
// concurrent check for the same month finds the marker taken and backs
// off. A month with no budget or nothing left over still claims its
// marker and is never revisited. The settled return reports whether the
// month is now accounted for; a transient read failure leaves it
// unsettled so a later check retries.
func (s *ServiceImpl) processMonth(ctx context.Context, userKey string, month clock.MonthKey, now time.Time) (Result, bool) {
	budgetAmount, err := s.budgets.Get(ctx, month)
	if err != nil {
		log.Warnf("rollover for %s deferred, could not read budget: %v", month, err)
		return Result{}, false
	}

	expenses, err := s.expenses.ListForMonth(ctx, month, "")
	if err != nil {
		log.Warnf("rollover for %s deferred, could not read expenses: %v", month, err)
		return Result{}, false
	}
	spent := decimal.Zero
	for _, e := range expenses {
		spent = spent.Add(e.Amount)
	}

	claimed, err := s.markers.ClaimProcessed(ctx, userKey, month, now)
	if err != nil {
		log.Warnf("rollover for %s deferred, could not claim marker: %v", month, err)
		return Result{}, false
	}
	if !claimed {
		return Result{}, true
	}

	remaining := budgetAmount.Sub(spent)
	if !remaining.IsPositive() {
		log.Debugf("no rollover for %s: budget %s, spent %s", month, budgetAmount, spent)
		return Result{}, true
	}

	entry, err := s.savings.Add(ctx, savings.Entry{
		Amount:         remaining,
		Description:    "Auto-rollover from " + month.DisplayName() + " budget",
		Date:           s.clock.Today(),
		IsAutoRollover: true,
		FromMonth:      month,
	})
	if err != nil {
		// The marker is already claimed, so this month's rollover is
		// lost rather than risked twice.
		log.Errorf("rollover for %s claimed but entry could not be stored: %v", month, err)
		return Result{}, true
	}

	log.Infof("rolled over %s from %s budget into savings", remaining, month)
	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.RolloverApplied, event_bus.RolloverAppliedData{
		UserKey:   userKey,
		FromMonth: month.String(),
		Amount:    remaining,
		EntryID:   entry.ID,
	}))

	return Result{Applied: true, FromMonth: month, Amount: remaining, EntryID: entry.ID}, true
}

// Reset clears the markers and immediately re-runs the check, so a dev
// clock jumped backward and forward can exercise the rollover repeatedly.
func (s *ServiceImpl) Reset(ctx context.Context) (Result, error) {
	scope := user.ScopeFrom(ctx)
	log.Infof("resetting rollover bookkeeping for user %s", scope.Key())
	if err := s.markers.Reset(ctx, scope.Key()); err != nil {
		return Result{}, err
	}
	return s.Check(ctx)
}
