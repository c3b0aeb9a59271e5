package notification

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachat/bachat/internal/event_bus"
	"github.com/bachat/bachat/pkg/user"
)

func TestService_CollectsRolloverEvents(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewService(bus)
	ctx := user.WithScope(context.Background(), user.Authenticated("u-1"))

	err := bus.Publish(event_bus.NewEvent(ctx, event_bus.RolloverApplied, event_bus.RolloverAppliedData{
		UserKey:   "u-1",
		FromMonth: "2025-01",
		Amount:    decimal.NewFromInt(1800),
		EntryID:   "e-1",
	}))
	require.NoError(t, err)

	notifications, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "rollover", notifications[0].Type)
	assert.Equal(t, "Rolled over 1800 from 2025-01 into savings", notifications[0].Message)

	// another user sees nothing
	other := user.WithScope(context.Background(), user.Authenticated("u-2"))
	notifications, err = service.List(other)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestService_CollectsClockEvents(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewService(bus)
	ctx := user.WithScope(context.Background(), user.AnonymousLocal())

	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	err := bus.Publish(event_bus.NewEvent(ctx, event_bus.ClockChanged, event_bus.ClockChangedData{
		Now:     now,
		DevMode: true,
	}))
	require.NoError(t, err)
	err = bus.Publish(event_bus.NewEvent(ctx, event_bus.ClockChanged, event_bus.ClockChangedData{
		Now:     now,
		DevMode: false,
	}))
	require.NoError(t, err)

	notifications, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	// newest first
	assert.Equal(t, "Simulated time disabled, back to real time", notifications[0].Message)
	assert.Equal(t, "Simulated time is now 2025-02-01", notifications[1].Message)
}

func TestService_ClearDropsOnlyTheCallersFeed(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewService(bus)
	first := user.WithScope(context.Background(), user.Authenticated("u-1"))
	second := user.WithScope(context.Background(), user.Authenticated("u-2"))

	for _, key := range []string{"u-1", "u-2"} {
		err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.RolloverApplied, event_bus.RolloverAppliedData{
			UserKey:   key,
			FromMonth: "2025-01",
			Amount:    decimal.NewFromInt(100),
			EntryID:   "e-" + key,
		}))
		require.NoError(t, err)
	}

	require.NoError(t, service.Clear(first))

	notifications, err := service.List(first)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	notifications, err = service.List(second)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}

func TestService_FeedIsBounded(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewService(bus)
	ctx := user.WithScope(context.Background(), user.Authenticated("u-1"))

	for i := 0; i < maxPerUser+10; i++ {
		err := bus.Publish(event_bus.NewEvent(ctx, event_bus.RolloverApplied, event_bus.RolloverAppliedData{
			UserKey:   "u-1",
			FromMonth: "2025-01",
			Amount:    decimal.NewFromInt(int64(i)),
			EntryID:   "e",
		}))
		require.NoError(t, err)
	}

	notifications, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notifications, maxPerUser)
}
