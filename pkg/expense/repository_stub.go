package expense

import (
	"context"
	"sort"

	"github.com/bachat/bachat/pkg/clock"
)

// RepoStub is an in-memory Repo for tests. Setting FailWith makes every
// operation return that error, which is how fallback behaviour is tested.
type RepoStub struct {
	Expenses []Expense
	FailWith error
}

func NewRepoStub() *RepoStub {
	return &RepoStub{}
}

func (s *RepoStub) Store(ctx context.Context, expense Expense) (Expense, error) {
	if s.FailWith != nil {
		return Expense{}, s.FailWith
	}
	s.Expenses = append(s.Expenses, expense)
	return expense, nil
}

func (s *RepoStub) ListForMonth(ctx context.Context, userKey string, month clock.MonthKey, category string) ([]Expense, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	matches := make([]Expense, 0)
	for _, expense := range s.Expenses {
		if expense.UserKey != userKey || !month.Contains(expense.Date) {
			continue
		}
		if category != "" && expense.Category != category {
			continue
		}
		matches = append(matches, expense)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Date > matches[j].Date
	})
	return matches, nil
}

func (s *RepoStub) Delete(ctx context.Context, userKey string, id string) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	for i, expense := range s.Expenses {
		if expense.UserKey == userKey && expense.ID == id {
			s.Expenses = append(s.Expenses[:i], s.Expenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
