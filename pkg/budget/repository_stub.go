package budget

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bachat/bachat/pkg/clock"
)

type stubKey struct {
	userKey string
	month   clock.MonthKey
}

// RepoStub is an in-memory Repo for tests. Setting FailWith makes every
// operation return that error.
type RepoStub struct {
	budgets  map[stubKey]decimal.Decimal
	legacy   map[string]decimal.Decimal
	FailWith error
}

func NewRepoStub() *RepoStub {
	return &RepoStub{
		budgets: map[stubKey]decimal.Decimal{},
		legacy:  map[string]decimal.Decimal{},
	}
}

func (s *RepoStub) Get(ctx context.Context, userKey string, month clock.MonthKey) (decimal.Decimal, error) {
	if s.FailWith != nil {
		return decimal.Zero, s.FailWith
	}
	if amount, ok := s.budgets[stubKey{userKey, month}]; ok {
		return amount, nil
	}
	if amount, ok := s.legacy[userKey]; ok {
		return amount, nil
	}
	return decimal.Zero, nil
}

func (s *RepoStub) Set(ctx context.Context, userKey string, month clock.MonthKey, amount decimal.Decimal) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.budgets[stubKey{userKey, month}] = amount
	return nil
}

// SetLegacy seeds the pre-per-month scalar budget.
func (s *RepoStub) SetLegacy(userKey string, amount decimal.Decimal) {
	s.legacy[userKey] = amount
}
