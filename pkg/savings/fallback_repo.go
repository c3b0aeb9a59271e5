package savings

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/pkg/user"
)

// FallbackRepo prefers a remote backend and degrades to the local store
// when the remote is unreachable. The anonymous local scope bypasses the
// remote entirely, its data lives only on this device. For authenticated
// scopes, reads and creates fall back silently; deletes never do, because
// a delete that only removed the local copy would resurrect the entry on
// the next remote read.
type FallbackRepo struct {
	remote Repo
	local  Repo
}

func NewFallbackRepo(remote Repo, local Repo) *FallbackRepo {
	return &FallbackRepo{remote: remote, local: local}
}

func (r *FallbackRepo) Store(ctx context.Context, entry Entry) (Entry, error) {
	if user.IsLocalKey(entry.UserKey) {
		return r.local.Store(ctx, entry)
	}
	stored, err := r.remote.Store(ctx, entry)
	if err != nil {
		log.Warnf("remote savings store failed, saving locally: %v", err)
		return r.local.Store(ctx, entry)
	}
	return stored, nil
}

func (r *FallbackRepo) List(ctx context.Context, userKey string) ([]Entry, error) {
	if user.IsLocalKey(userKey) {
		return r.local.List(ctx, userKey)
	}
	entries, err := r.remote.List(ctx, userKey)
	if err != nil {
		log.Warnf("remote savings list failed, reading locally: %v", err)
		return r.local.List(ctx, userKey)
	}
	return entries, nil
}

func (r *FallbackRepo) Delete(ctx context.Context, userKey string, id string) error {
	if user.IsLocalKey(userKey) {
		return r.local.Delete(ctx, userKey, id)
	}
	return r.remote.Delete(ctx, userKey, id)
}
