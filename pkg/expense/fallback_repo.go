package expense

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/user"
)

// FallbackRepo prefers a remote backend and degrades to the local store
// when the remote is unreachable. The anonymous local scope bypasses the
// remote entirely, its data lives only on this device. For authenticated
// scopes, reads and creates fall back silently; deletes never do, because
// a delete that only removed the local copy would resurrect the record on
// the next remote read.
type FallbackRepo struct {
	remote Repo
	local  Repo
}

func NewFallbackRepo(remote Repo, local Repo) *FallbackRepo {
	return &FallbackRepo{remote: remote, local: local}
}

func (r *FallbackRepo) Store(ctx context.Context, expense Expense) (Expense, error) {
	if user.IsLocalKey(expense.UserKey) {
		return r.local.Store(ctx, expense)
	}
	stored, err := r.remote.Store(ctx, expense)
	if err != nil {
		log.Warnf("remote expense store failed, saving locally: %v", err)
		return r.local.Store(ctx, expense)
	}
	return stored, nil
}

func (r *FallbackRepo) ListForMonth(ctx context.Context, userKey string, month clock.MonthKey, category string) ([]Expense, error) {
	if user.IsLocalKey(userKey) {
		return r.local.ListForMonth(ctx, userKey, month, category)
	}
	expenses, err := r.remote.ListForMonth(ctx, userKey, month, category)
	if err != nil {
		log.Warnf("remote expense list failed, reading locally: %v", err)
		return r.local.ListForMonth(ctx, userKey, month, category)
	}
	return expenses, nil
}

func (r *FallbackRepo) Delete(ctx context.Context, userKey string, id string) error {
	if user.IsLocalKey(userKey) {
		return r.local.Delete(ctx, userKey, id)
	}
	return r.remote.Delete(ctx, userKey, id)
}
