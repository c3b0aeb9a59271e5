package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthOf(t *testing.T) {
	key := MonthOf(time.Date(2025, time.March, 15, 9, 30, 0, 0, time.UTC))
	assert.Equal(t, MonthKey("2025-03"), key)
}

func TestMonthKey_Prev(t *testing.T) {
	t.Run("decrements the month", func(t *testing.T) {
		assert.Equal(t, MonthKey("2025-02"), MonthKey("2025-03").Prev())
	})

	t.Run("rolls the year back from January", func(t *testing.T) {
		assert.Equal(t, MonthKey("2024-12"), MonthKey("2025-01").Prev())
	})
}

func TestMonthKey_Contains(t *testing.T) {
	key := MonthKey("2025-01")

	assert.True(t, key.Contains("2025-01-31"))
	assert.False(t, key.Contains("2025-02-01"))
	assert.False(t, key.Contains("2024-12-31"))
}

func TestMonthKey_Ordering(t *testing.T) {
	// Keys must order chronologically as plain strings.
	assert.True(t, "2024-12" < "2025-01")
	assert.True(t, "2025-09" < "2025-10")
}

func TestParseMonthKey(t *testing.T) {
	t.Run("accepts a valid key", func(t *testing.T) {
		key, err := ParseMonthKey("2025-07")

		assert.NoError(t, err)
		assert.Equal(t, MonthKey("2025-07"), key)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseMonthKey("July 2025")

		assert.Error(t, err)
	})
}

func TestMonthKey_DisplayName(t *testing.T) {
	assert.Equal(t, "January 2025", MonthKey("2025-01").DisplayName())
}
