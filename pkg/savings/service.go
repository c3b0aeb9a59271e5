package savings

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/user"
)

// Kind narrows a listing to one origin of entries.
type Kind string

const (
	KindAny    Kind = ""
	KindAuto   Kind = "auto"
	KindManual Kind = "manual"
)

// Filter narrows a listing. The zero value matches everything.
type Filter struct {
	Kind  Kind
	Month clock.MonthKey
}

func (f Filter) matches(entry Entry) bool {
	switch f.Kind {
	case KindAuto:
		if !entry.IsAutoRollover {
			return false
		}
	case KindManual:
		if entry.IsAutoRollover {
			return false
		}
	}
	if f.Month != "" && !f.Month.Contains(entry.Date) {
		return false
	}
	return true
}

type Service interface {
	Add(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, filter Filter) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	SetGoal(ctx context.Context, amount decimal.Decimal) error
	Summary(ctx context.Context) (Summary, error)
	// TotalForMonth sums all entries whose date falls within the month.
	TotalForMonth(ctx context.Context, month clock.MonthKey) (decimal.Decimal, error)
}

type ServiceImpl struct {
	repo  Repo
	goals GoalRepo
	clock *clock.Provider
}

func NewService(repo Repo, goals GoalRepo, clockProvider *clock.Provider) *ServiceImpl {
	return &ServiceImpl{repo: repo, goals: goals, clock: clockProvider}
}

// Add stores a new savings entry. The ID and creation time are assigned
// here; a missing date defaults to the current day. Rollover entries come
// through this same path, pre-filled by the rollover engine.
func (s *ServiceImpl) Add(ctx context.Context, entry Entry) (Entry, error) {
	scope := user.ScopeFrom(ctx)
	entry.ID = uuid.New().String()
	entry.UserKey = scope.Key()
	entry.CreatedAt = s.clock.Now()
	if entry.Date == "" {
		entry.Date = s.clock.Today()
	}
	return s.repo.Store(ctx, entry)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]Entry, error) {
	scope := user.ScopeFrom(ctx)
	entries, err := s.repo.List(ctx, scope.Key())
	if err != nil {
		return nil, err
	}

	matches := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if filter.matches(entry) {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

func (s *ServiceImpl) TotalForMonth(ctx context.Context, month clock.MonthKey) (decimal.Decimal, error) {
	entries, err := s.List(ctx, Filter{Month: month})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Amount)
	}
	return total, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	scope := user.ScopeFrom(ctx)
	return s.repo.Delete(ctx, scope.Key(), id)
}

func (s *ServiceImpl) SetGoal(ctx context.Context, amount decimal.Decimal) error {
	scope := user.ScopeFrom(ctx)
	return s.goals.SetGoal(ctx, scope.Key(), amount)
}

// Summary totals all entries, splits them by origin and relates the total
// to the goal. The monthly average divides the total by the number of
// distinct months that have at least one entry.
func (s *ServiceImpl) Summary(ctx context.Context) (Summary, error) {
	scope := user.ScopeFrom(ctx)

	entries, err := s.repo.List(ctx, scope.Key())
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Total:         decimal.Zero,
		ManualTotal:   decimal.Zero,
		RolloverTotal: decimal.Zero,
		EntryCount:    len(entries),
	}
	months := make(map[string]struct{})
	for _, entry := range entries {
		summary.Total = summary.Total.Add(entry.Amount)
		if entry.IsAutoRollover {
			summary.RolloverTotal = summary.RolloverTotal.Add(entry.Amount)
		} else {
			summary.ManualTotal = summary.ManualTotal.Add(entry.Amount)
		}
		if len(entry.Date) >= 7 {
			months[entry.Date[:7]] = struct{}{}
		}
	}
	if len(months) > 0 {
		summary.MonthlyAverage = summary.Total.Div(decimal.NewFromInt(int64(len(months)))).Round(2)
	} else {
		summary.MonthlyAverage = decimal.Zero
	}

	goal, goalSet, err := s.goals.Goal(ctx, scope.Key())
	if err != nil {
		return Summary{}, err
	}
	summary.Goal = goal
	summary.GoalSet = goalSet
	if goalSet && goal.IsPositive() {
		summary.GoalProgress = summary.Total.Mul(decimal.NewFromInt(100)).Div(goal).Round(2)
	} else {
		summary.GoalProgress = decimal.Zero
	}

	return summary, nil
}
