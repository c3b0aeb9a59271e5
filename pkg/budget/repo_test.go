package budget

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachat/bachat/internal/test_utils"
	"github.com/bachat/bachat/pkg/clock"
)

func TestSQLiteRepo_SetAndGet(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewSQLiteRepo(db)
	ctx := context.Background()

	t.Run("returns zero when no budget is set", func(t *testing.T) {
		amount, err := repo.Get(ctx, "u-1", "2025-01")

		assert.NoError(t, err)
		assert.True(t, amount.IsZero())
	})

	t.Run("stores and reads a budget per month", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "u-1", "2025-01", decimal.NewFromInt(5000)))

		amount, err := repo.Get(ctx, "u-1", "2025-01")

		assert.NoError(t, err)
		assert.True(t, amount.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("set again overwrites", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "u-1", "2025-02", decimal.NewFromInt(4000)))
		require.NoError(t, repo.Set(ctx, "u-1", "2025-02", decimal.NewFromInt(4500)))

		amount, err := repo.Get(ctx, "u-1", "2025-02")

		assert.NoError(t, err)
		assert.True(t, amount.Equal(decimal.NewFromInt(4500)))
	})

	t.Run("budgets are scoped per user", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "u-2", "2025-01", decimal.NewFromInt(100)))

		amount, err := repo.Get(ctx, "u-3", "2025-01")

		assert.NoError(t, err)
		assert.True(t, amount.IsZero())
	})
}

func TestSQLiteRepo_LegacyFallback(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewSQLiteRepo(db)
	ctx := context.Background()

	// given - a scalar budget from before budgets were per-month
	_, err := db.Exec(`INSERT INTO legacy_budgets (user_key, amount) VALUES (?, ?)`, "u-legacy", "3000")
	require.NoError(t, err)

	t.Run("missing per-month value falls back to the legacy scalar", func(t *testing.T) {
		amount, err := repo.Get(ctx, "u-legacy", "2024-11")

		assert.NoError(t, err)
		assert.True(t, amount.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("per-month value wins over the legacy scalar", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "u-legacy", "2024-12", decimal.NewFromInt(3500)))

		amount, err := repo.Get(ctx, "u-legacy", "2024-12")

		assert.NoError(t, err)
		assert.True(t, amount.Equal(decimal.NewFromInt(3500)))
	})
}

func TestSQLiteRepo_CorruptedAmountTreatedAsUnset(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewSQLiteRepo(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO budgets (user_key, month, amount) VALUES (?, ?, ?)`, "u-1", "2025-03", "not-a-number")
	require.NoError(t, err)

	amount, err := repo.Get(ctx, "u-1", clock.MonthKey("2025-03"))

	assert.NoError(t, err)
	assert.True(t, amount.IsZero())
}
