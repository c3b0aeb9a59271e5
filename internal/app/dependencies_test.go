package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachat/bachat/internal/config"
	"github.com/bachat/bachat/pkg/expense"
	"github.com/bachat/bachat/pkg/savings"
)

func TestSelectBackend(t *testing.T) {
	ctx := context.Background()
	localExpenses := expense.NewRepoStub()
	localSavings := savings.NewRepoStub()

	t.Run("local backend returns the local repositories unchanged", func(t *testing.T) {
		cfg := config.Application{Store: config.Store{Backend: config.BackendLocal}}

		expenses, entries, err := selectBackend(ctx, cfg, localExpenses, localSavings)

		require.NoError(t, err)
		assert.Same(t, localExpenses, expenses)
		assert.Same(t, localSavings, entries)
	})

	t.Run("unknown backend is a configuration error", func(t *testing.T) {
		cfg := config.Application{Store: config.Store{Backend: "dynamodb"}}

		_, _, err := selectBackend(ctx, cfg, localExpenses, localSavings)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "dynamodb")
	})

	t.Run("empty backend is rejected too", func(t *testing.T) {
		cfg := config.Application{Store: config.Store{Backend: ""}}

		_, _, err := selectBackend(ctx, cfg, localExpenses, localSavings)

		require.Error(t, err)
	})
}
