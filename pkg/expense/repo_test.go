package expense

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachat/bachat/internal/test_utils"
)

func TestSQLiteRepo_StoreAndList(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewSQLiteRepo(db)
	ctx := context.Background()

	store := func(id, date, category string, amount int64) {
		t.Helper()
		_, err := repo.Store(ctx, Expense{
			ID:        id,
			UserKey:   "u-1",
			Amount:    decimal.NewFromInt(amount),
			Category:  category,
			Date:      date,
			CreatedAt: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	store("e-1", "2025-01-05", "food", 120)
	store("e-2", "2025-01-20", "transport", 45)
	store("e-3", "2025-02-01", "food", 80)

	t.Run("lists only the requested month", func(t *testing.T) {
		expenses, err := repo.ListForMonth(ctx, "u-1", "2025-01", "")

		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, "e-2", expenses[0].ID)
		assert.Equal(t, "e-1", expenses[1].ID)
	})

	t.Run("filters by category", func(t *testing.T) {
		expenses, err := repo.ListForMonth(ctx, "u-1", "2025-01", "food")

		require.NoError(t, err)
		require.Len(t, expenses, 1)
		assert.Equal(t, "e-1", expenses[0].ID)
	})

	t.Run("round-trips the stored fields", func(t *testing.T) {
		expenses, err := repo.ListForMonth(ctx, "u-1", "2025-02", "")

		require.NoError(t, err)
		require.Len(t, expenses, 1)
		assert.Equal(t, "food", expenses[0].Category)
		assert.True(t, expenses[0].Amount.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, "2025-02-01", expenses[0].Date)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		expenses, err := repo.ListForMonth(ctx, "u-2", "2025-01", "")

		require.NoError(t, err)
		assert.Empty(t, expenses)
	})
}

func TestSQLiteRepo_Delete(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewSQLiteRepo(db)
	ctx := context.Background()

	_, err := repo.Store(ctx, Expense{
		ID: "e-1", UserKey: "u-1", Amount: decimal.NewFromInt(10),
		Category: "food", Date: "2025-01-05", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	t.Run("removes the expense", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "u-1", "e-1"))

		expenses, err := repo.ListForMonth(ctx, "u-1", "2025-01", "")
		require.NoError(t, err)
		assert.Empty(t, expenses)
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		err := repo.Delete(ctx, "u-1", "missing")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cannot delete another user's expense", func(t *testing.T) {
		_, err := repo.Store(ctx, Expense{
			ID: "e-2", UserKey: "u-2", Amount: decimal.NewFromInt(10),
			Category: "food", Date: "2025-01-05", CreatedAt: time.Now(),
		})
		require.NoError(t, err)

		assert.ErrorIs(t, repo.Delete(ctx, "u-1", "e-2"), ErrNotFound)
	})
}
