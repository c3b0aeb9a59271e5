package rollover

import (
	"context"
	"time"

	"github.com/bachat/bachat/pkg/clock"
)

type markerKey struct {
	userKey string
	month   clock.MonthKey
}

// MarkerRepoStub is an in-memory MarkerRepo for tests. ClaimCalls counts
// marker writes so tests can assert a re-check writes nothing.
type MarkerRepoStub struct {
	lastChecks map[string]string
	processed  map[markerKey]bool
	ClaimCalls int
	FailWith   error
}

func NewMarkerRepoStub() *MarkerRepoStub {
	return &MarkerRepoStub{
		lastChecks: map[string]string{},
		processed:  map[markerKey]bool{},
	}
}

func (s *MarkerRepoStub) LastCheck(ctx context.Context, userKey string) (string, error) {
	if s.FailWith != nil {
		return "", s.FailWith
	}
	return s.lastChecks[userKey], nil
}

func (s *MarkerRepoStub) SetLastCheck(ctx context.Context, userKey string, checkedAt time.Time) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.lastChecks[userKey] = checkedAt.UTC().Format(time.RFC3339)
	return nil
}

func (s *MarkerRepoStub) ClaimProcessed(ctx context.Context, userKey string, month clock.MonthKey, processedAt time.Time) (bool, error) {
	if s.FailWith != nil {
		return false, s.FailWith
	}
	s.ClaimCalls++
	if s.processed[markerKey{userKey, month}] {
		return false, nil
	}
	s.processed[markerKey{userKey, month}] = true
	return true, nil
}

func (s *MarkerRepoStub) IsProcessed(ctx context.Context, userKey string, month clock.MonthKey) (bool, error) {
	if s.FailWith != nil {
		return false, s.FailWith
	}
	return s.processed[markerKey{userKey, month}], nil
}

func (s *MarkerRepoStub) Reset(ctx context.Context, userKey string) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	delete(s.lastChecks, userKey)
	for key := range s.processed {
		if key.userKey == userKey {
			delete(s.processed, key)
		}
	}
	return nil
}
