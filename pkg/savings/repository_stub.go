package savings

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// RepoStub is an in-memory Repo for tests. Setting FailWith makes every
// operation return that error.
type RepoStub struct {
	Entries  []Entry
	FailWith error
}

func NewRepoStub() *RepoStub {
	return &RepoStub{}
}

func (s *RepoStub) Store(ctx context.Context, entry Entry) (Entry, error) {
	if s.FailWith != nil {
		return Entry{}, s.FailWith
	}
	s.Entries = append(s.Entries, entry)
	return entry, nil
}

func (s *RepoStub) List(ctx context.Context, userKey string) ([]Entry, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	matches := make([]Entry, 0)
	for _, entry := range s.Entries {
		if entry.UserKey == userKey {
			matches = append(matches, entry)
		}
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
	for i, entry := range s.Entries {
		if entry.UserKey == userKey && entry.ID == id {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// GoalRepoStub is an in-memory GoalRepo for tests.
type GoalRepoStub struct {
	Goals map[string]decimal.Decimal
}

func NewGoalRepoStub() *GoalRepoStub {
	return &GoalRepoStub{Goals: map[string]decimal.Decimal{}}
}

func (s *GoalRepoStub) Goal(ctx context.Context, userKey string) (decimal.Decimal, bool, error) {
	goal, ok := s.Goals[userKey]
	return goal, ok, nil
}

func (s *GoalRepoStub) SetGoal(ctx context.Context, userKey string, amount decimal.Decimal) error {
	s.Goals[userKey] = amount
	return nil
}
