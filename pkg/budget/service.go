package budget

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/user"
)

type Service interface {
	Get(ctx context.Context, month clock.MonthKey) (decimal.Decimal, error)
	Set(ctx context.Context, month clock.MonthKey, amount decimal.Decimal) error
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Get(ctx context.Context, month clock.MonthKey) (decimal.Decimal, error) {
	scope := user.ScopeFrom(ctx)
	return s.repo.Get(ctx, scope.Key(), month)
}

// Set stores the month's budget. Amount validation (positive, numeric) is
// the transport boundary's job; the ledger itself stores what it is given.
func (s *ServiceImpl) Set(ctx context.Context, month clock.MonthKey, amount decimal.Decimal) error {
	scope := user.ScopeFrom(ctx)
	return s.repo.Set(ctx, scope.Key(), month, amount)
}
