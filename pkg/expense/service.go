package expense

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bachat/bachat/pkg/budget"
	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/user"
)

type Service interface {
	Add(ctx context.Context, expense Expense) (Expense, error)
	ListForMonth(ctx context.Context, month clock.MonthKey, category string) ([]Expense, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, month clock.MonthKey) (MonthSummary, error)
}

type ServiceImpl struct {
	repo    Repo
	budgets budget.Service
	clock   *clock.Provider
}

func NewService(repo Repo, budgets budget.Service, clockProvider *clock.Provider) *ServiceImpl {
	return &ServiceImpl{repo: repo, budgets: budgets, clock: clockProvider}
}

// Add stores a new expense. The ID and creation time are assigned here;
// a missing date defaults to the current day.
func (s *ServiceImpl) Add(ctx context.Context, expense Expense) (Expense, error) {
	scope := user.ScopeFrom(ctx)
	expense.ID = uuid.New().String()
	expense.UserKey = scope.Key()
	expense.CreatedAt = s.clock.Now()
	if expense.Date == "" {
		expense.Date = s.clock.Today()
	}
	return s.repo.Store(ctx, expense)
}

func (s *ServiceImpl) ListForMonth(ctx context.Context, month clock.MonthKey, category string) ([]Expense, error) {
	scope := user.ScopeFrom(ctx)
	return s.repo.ListForMonth(ctx, scope.Key(), month, category)
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	scope := user.ScopeFrom(ctx)
	return s.repo.Delete(ctx, scope.Key(), id)
}

// Summary totals the month's spending and sets it against the month's
// budget. Remaining may be negative when the month is overspent.
func (s *ServiceImpl) Summary(ctx context.Context, month clock.MonthKey) (MonthSummary, error) {
	expenses, err := s.ListForMonth(ctx, month, "")
	if err != nil {
		return MonthSummary{}, err
	}

	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, expense := range expenses {
		total = total.Add(expense.Amount)
		byCategory[expense.Category] = byCategory[expense.Category].Add(expense.Amount)
	}

	budgetAmount, err := s.budgets.Get(ctx, month)
	if err != nil {
		return MonthSummary{}, err
	}

	return MonthSummary{
		Month:      month.String(),
		Total:      total,
		Budget:     budgetAmount,
		Remaining:  budgetAmount.Sub(total),
		ByCategory: byCategory,
		Count:      len(expenses),
	}, nil
}
