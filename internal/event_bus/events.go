package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ClockChanged is published after every state-changing operation on the
	// dev clock, before the triggering call returns.
	ClockChanged EventType = "clock.changed"
	// RolloverApplied is published when a monthly rollover materializes a
	// savings entry. The notification/toast layer subscribes to it.
	RolloverApplied EventType = "rollover.applied"
)

type ClockChangedData struct {
	Now     time.Time
	DevMode bool
}

type RolloverAppliedData struct {
	UserKey   string
	FromMonth string
	Amount    decimal.Decimal
	EntryID   string
}
