package savings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackRepo(t *testing.T) {
	ctx := context.Background()
	remoteDown := errors.New("remote unreachable")

	sample := Entry{
		ID: "s-1", UserKey: "u-1", Amount: decimal.NewFromInt(200),
		Description: "bonus", Date: "2025-01-10", CreatedAt: time.Now(),
	}

	t.Run("falls back to local reads when remote fails", func(t *testing.T) {
		remote := NewRepoStub()
		local := NewRepoStub()
		repo := NewFallbackRepo(remote, local)
		_, err := local.Store(ctx, sample)
		require.NoError(t, err)
		remote.FailWith = remoteDown

		entries, err := repo.List(ctx, "u-1")

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "s-1", entries[0].ID)
	})

	t.Run("falls back to local store when remote create fails", func(t *testing.T) {
		remote := NewRepoStub()
		local := NewRepoStub()
		repo := NewFallbackRepo(remote, local)
		remote.FailWith = remoteDown

		_, err := repo.Store(ctx, sample)

		require.NoError(t, err)
		assert.Len(t, local.Entries, 1)
		assert.Empty(t, remote.Entries)
	})

	t.Run("local scope bypasses a healthy remote entirely", func(t *testing.T) {
		remote := NewRepoStub()
		local := NewRepoStub()
		repo := NewFallbackRepo(remote, local)
		anonymous := Entry{
			ID: "s-local", UserKey: "local", Amount: decimal.NewFromInt(50),
			Date: "2025-01-10", CreatedAt: time.Now(),
		}

		_, err := repo.Store(ctx, anonymous)
		require.NoError(t, err)
		assert.Empty(t, remote.Entries)
		assert.Len(t, local.Entries, 1)

		entries, err := repo.List(ctx, "local")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "s-local", entries[0].ID)

		require.NoError(t, repo.Delete(ctx, "local", "s-local"))
		assert.Empty(t, local.Entries)
	})

	t.Run("delete surfaces remote errors instead of falling back", func(t *testing.T) {
		remote := NewRepoStub()
		local := NewRepoStub()
		repo := NewFallbackRepo(remote, local)
		_, err := local.Store(ctx, sample)
		require.NoError(t, err)
		remote.FailWith = remoteDown

		err = repo.Delete(ctx, "u-1", "s-1")

		assert.ErrorIs(t, err, remoteDown)
		assert.Len(t, local.Entries, 1)
	})
}
