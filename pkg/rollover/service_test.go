package rollover

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachat/bachat/internal/event_bus"
	"github.com/bachat/bachat/internal/utils"
	"github.com/bachat/bachat/pkg/budget"
	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/expense"
	"github.com/bachat/bachat/pkg/savings"
	"github.com/bachat/bachat/pkg/user"
)

type fixture struct {
	ctx         context.Context
	clock       *clock.Provider
	mockClock   *utils.MockClock
	bus         *event_bus.EventBus
	budgetRepo  *budget.RepoStub
	budgets     budget.Service
	expenseRepo *expense.RepoStub
	expenses    expense.Service
	savingsRepo *savings.RepoStub
	savings     savings.Service
	markers     *MarkerRepoStub
	service     *ServiceImpl
}

func newFixture(t *testing.T, nowStr string) *fixture {
	t.Helper()
	now, err := time.Parse(time.RFC3339, nowStr)
	require.NoError(t, err)

	mockClock := &utils.MockClock{FixedNow: now}
	bus := event_bus.NewEventBus()
	clockProvider := clock.NewProvider(mockClock, bus)

	budgetRepo := budget.NewRepoStub()
	budgets := budget.NewService(budgetRepo)
	expenseRepo := expense.NewRepoStub()
	expenses := expense.NewService(expenseRepo, budgets, clockProvider)
	savingsRepo := savings.NewRepoStub()
	savingsService := savings.NewService(savingsRepo, savings.NewGoalRepoStub(), clockProvider)
	markers := NewMarkerRepoStub()

	return &fixture{
		ctx:         user.WithScope(context.Background(), user.Authenticated("u-1")),
		clock:       clockProvider,
		mockClock:   mockClock,
		bus:         bus,
		budgetRepo:  budgetRepo,
		budgets:     budgets,
		expenseRepo: expenseRepo,
		expenses:    expenses,
		savingsRepo: savingsRepo,
		savings:     savingsService,
		markers:     markers,
		service:     NewService(markers, budgets, expenses, savingsService, clockProvider, bus),
	}
}

func (f *fixture) addExpense(t *testing.T, date, amount string) {
	t.Helper()
	_, err := f.expenses.Add(f.ctx, expense.Expense{
		Amount:   decimal.RequireFromString(amount),
		Category: "misc",
		Date:     date,
	})
	require.NoError(t, err)
}

func (f *fixture) rolloverEntries(t *testing.T) []savings.Entry {
	t.Helper()
	entries, err := f.savings.List(f.ctx, savings.Filter{Kind: savings.KindAuto})
	require.NoError(t, err)
	return entries
}

func TestCheck_RollsLeftoverBudgetIntoSavings(t *testing.T) {
	// given - January had a 5000 budget and 3200 spent, and it is now February
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(5000)))
	f.addExpense(t, "2025-01-10", "1200.50")
	f.addExpense(t, "2025-01-22", "1999.50")

	// when
	result, err := f.service.Check(f.ctx)

	// then - exactly the leftover lands in savings
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "2025-01", result.FromMonth.String())
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("1800.00")))

	rollovers := f.rolloverEntries(t)
	require.Len(t, rollovers, 1)
	entry := rollovers[0]
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("1800.00")))
	assert.Equal(t, "Auto-rollover from January 2025 budget", entry.Description)
	assert.Equal(t, "2025-02-01", entry.Date)
	assert.Equal(t, "2025-01", entry.FromMonth.String())
}

func TestCheck_AtMostOncePerMonth(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(1000)))

	for i := 0; i < 3; i++ {
		_, err := f.service.Check(f.ctx)
		require.NoError(t, err)
	}

	assert.Len(t, f.rolloverEntries(t), 1)
}

func TestCheck_SameMonthRecheckShortCircuits(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(1000)))

	_, err := f.service.Check(f.ctx)
	require.NoError(t, err)
	claimsAfterFirst := f.markers.ClaimCalls

	// later the same month
	f.mockClock.SetNow(f.mockClock.FixedNow.Add(72 * time.Hour))
	result, err := f.service.Check(f.ctx)

	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, claimsAfterFirst, f.markers.ClaimCalls)
}

func TestCheck_ZeroRemainderLeavesNoEntry(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(500)))
	f.addExpense(t, "2025-01-15", "500")

	result, err := f.service.Check(f.ctx)

	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Empty(t, f.rolloverEntries(t))

	// the month is still marked processed
	processed, err := f.markers.IsProcessed(f.ctx, "u-1", "2025-01")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestCheck_OverspentMonthLeavesNoEntry(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(500)))
	f.addExpense(t, "2025-01-15", "700")

	result, err := f.service.Check(f.ctx)

	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Empty(t, f.rolloverEntries(t))
}

func TestCheck_NoBudgetStillMarksMonthProcessed(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")

	result, err := f.service.Check(f.ctx)

	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Empty(t, f.rolloverEntries(t))

	processed, err := f.markers.IsProcessed(f.ctx, "u-1", "2025-01")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestCheck_WalksBackExactlyOneMonth(t *testing.T) {
	// given - November's budget was never rolled over and it is now January
	f := newFixture(t, "2025-01-05T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2024-11", decimal.NewFromInt(2000)))

	result, err := f.service.Check(f.ctx)

	// then - only December is considered, and December had no budget
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Empty(t, f.rolloverEntries(t))

	processed, err := f.markers.IsProcessed(f.ctx, "u-1", "2024-12")
	require.NoError(t, err)
	assert.True(t, processed)
	processed, err = f.markers.IsProcessed(f.ctx, "u-1", "2024-11")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestCheck_DevClockMonthAdvanceTriggersRollover(t *testing.T) {
	f := newFixture(t, "2025-01-20T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(3000)))
	f.addExpense(t, "2025-01-10", "1000")

	// a check within January does nothing but record itself
	result, err := f.service.Check(f.ctx)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	// when the simulated clock jumps into February
	f.clock.AdvanceToNextMonth()
	result, err = f.service.Check(f.ctx)

	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, "2025-01", result.FromMonth.String())
}

func TestCheck_PublishesRolloverEvent(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(1000)))

	var applied []event_bus.RolloverAppliedData
	event_bus.SubscribeTyped(f.bus, event_bus.RolloverApplied, func(e event_bus.EventT[event_bus.RolloverAppliedData]) error {
		applied = append(applied, e.Data)
		return nil
	})

	_, err := f.service.Check(f.ctx)

	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "u-1", applied[0].UserKey)
	assert.Equal(t, "2025-01", applied[0].FromMonth)
	assert.True(t, applied[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.NotEmpty(t, applied[0].EntryID)
}

func TestCheck_FailedEntryStoreDoesNotRepeatRollover(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(1000)))
	f.savingsRepo.FailWith = errors.New("store unavailable")

	result, err := f.service.Check(f.ctx)

	// the claim already happened, so the month is settled without an entry
	require.NoError(t, err)
	assert.False(t, result.Applied)

	f.savingsRepo.FailWith = nil
	f.markers.Reset(f.ctx, "u-1")
	f.mockClock.SetNow(f.mockClock.FixedNow.Add(time.Hour))

	result, err = f.service.Check(f.ctx)
	require.NoError(t, err)
	assert.True(t, result.Applied)
}

func TestCheck_ReadsFallBackToLocalStore(t *testing.T) {
	// expenses behind a fallback repo whose remote side is down
	f := newFixture(t, "2025-02-01T08:00:00Z")
	remote := expense.NewRepoStub()
	remote.FailWith = errors.New("remote unreachable")
	fallback := expense.NewFallbackRepo(remote, f.expenseRepo)
	f.service = NewService(f.markers, f.budgets,
		expense.NewService(fallback, f.budgets, f.clock), f.savings, f.clock, f.bus)

	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(1000)))
	f.addExpense(t, "2025-01-10", "400")

	result, err := f.service.Check(f.ctx)

	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(600)))
}

func TestReset_ClearsMarkersAndRechecksItself(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(1000)))

	_, err := f.service.Check(f.ctx)
	require.NoError(t, err)
	require.Len(t, f.rolloverEntries(t), 1)

	// a single reset re-runs the check, so January rolls over a second time
	result, err := f.service.Reset(f.ctx)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "2025-01", result.FromMonth.String())
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(1000)))

	assert.Len(t, f.rolloverEntries(t), 2)
}

func TestCheck_TransientBudgetFailureRetriesSameMonth(t *testing.T) {
	f := newFixture(t, "2025-02-01T08:00:00Z")
	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(1000)))

	// the budget store is briefly unreachable during the first check
	f.budgetRepo.FailWith = errors.New("budget store unavailable")
	result, err := f.service.Check(f.ctx)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	processed, err := f.markers.IsProcessed(f.ctx, "u-1", "2025-01")
	require.NoError(t, err)
	assert.False(t, processed)

	// an hour later, still within February, the store is back
	f.budgetRepo.FailWith = nil
	f.mockClock.SetNow(f.mockClock.FixedNow.Add(time.Hour))

	result, err = f.service.Check(f.ctx)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(1000)))
}

func TestCheck_LocalScopeRollsOverLocalExpenses(t *testing.T) {
	// an anonymous user whose expenses live only in the local store,
	// behind a fallback repo whose remote side is healthy but empty
	f := newFixture(t, "2025-02-01T08:00:00Z")
	f.ctx = user.WithScope(context.Background(), user.AnonymousLocal())

	remote := expense.NewRepoStub()
	fallback := expense.NewFallbackRepo(remote, f.expenseRepo)
	f.service = NewService(f.markers, f.budgets,
		expense.NewService(fallback, f.budgets, f.clock), f.savings, f.clock, f.bus)

	require.NoError(t, f.budgets.Set(f.ctx, "2025-01", decimal.NewFromInt(1000)))
	f.addExpense(t, "2025-01-10", "900")

	result, err := f.service.Check(f.ctx)

	// the empty remote must not shadow the 900 local spend
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, remote.Expenses)
}
