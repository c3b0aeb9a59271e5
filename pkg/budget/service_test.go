package budget

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachat/bachat/pkg/user"
)

func TestService_GetAndSet(t *testing.T) {
	repo := NewRepoStub()
	service := NewService(repo)
	ctx := user.WithScope(context.Background(), user.Authenticated("u-1"))

	t.Run("unset months read as zero", func(t *testing.T) {
		amount, err := service.Get(ctx, "2025-01")

		assert.NoError(t, err)
		assert.True(t, amount.IsZero())
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		require.NoError(t, service.Set(ctx, "2025-01", decimal.NewFromInt(5000)))

		amount, err := service.Get(ctx, "2025-01")

		assert.NoError(t, err)
		assert.True(t, amount.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("scopes by the user carried in the context", func(t *testing.T) {
		otherCtx := user.WithScope(context.Background(), user.Authenticated("u-2"))

		amount, err := service.Get(otherCtx, "2025-01")

		assert.NoError(t, err)
		assert.True(t, amount.IsZero())
	})

	t.Run("anonymous context reads the local scope", func(t *testing.T) {
		repo.SetLegacy("local", decimal.NewFromInt(1200))

		amount, err := service.Get(context.Background(), "2025-06")

		assert.NoError(t, err)
		assert.True(t, amount.Equal(decimal.NewFromInt(1200)))
	})
}
