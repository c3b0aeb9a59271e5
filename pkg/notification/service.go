package notification

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/internal/event_bus"
	"github.com/bachat/bachat/pkg/user"
)

// maxPerUser bounds the in-memory feed; older notifications are dropped.
const maxPerUser = 50

// Notification is one entry of the per-user feed the dashboard polls for
// toasts. Rollover results and dev clock changes land here.
type Notification struct {
	Type      string
	Message   string
	Timestamp time.Time
}

type Service interface {
	List(ctx context.Context) ([]Notification, error)
	Clear(ctx context.Context) error
}

type ServiceImpl struct {
	mu     sync.Mutex
	byUser map[string][]Notification
}

// NewService builds the notification feed and subscribes it to the event
// bus. Subscriptions live for the lifetime of the bus.
func NewService(eventBus *event_bus.EventBus) *ServiceImpl {
	service := &ServiceImpl{byUser: make(map[string][]Notification)}

	event_bus.SubscribeTyped[event_bus.RolloverAppliedData](
		eventBus,
		event_bus.RolloverApplied,
		func(e event_bus.EventT[event_bus.RolloverAppliedData]) error {
			log.Debugf("received rollover applied event: %v", e.Data)
			service.add(e.Data.UserKey, Notification{
				Type:      "rollover",
				Message:   "Rolled over " + e.Data.Amount.String() + " from " + e.Data.FromMonth + " into savings",
				Timestamp: e.Timestamp,
			})
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.ClockChangedData](
		eventBus,
		event_bus.ClockChanged,
		func(e event_bus.EventT[event_bus.ClockChangedData]) error {
			log.Debugf("received clock changed event: %v", e.Data)
			scope := user.ScopeFrom(e.Context())
			message := "Simulated time is now " + e.Data.Now.Format("2006-01-02")
			if !e.Data.DevMode {
				message = "Simulated time disabled, back to real time"
			}
			service.add(scope.Key(), Notification{
				Type:      "clock",
				Message:   message,
				Timestamp: e.Timestamp,
			})
			return nil
		},
	)

	return service
}

func (s *ServiceImpl) add(userKey string, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed := append(s.byUser[userKey], n)
	if len(feed) > maxPerUser {
		feed = feed[len(feed)-maxPerUser:]
	}
	s.byUser[userKey] = feed
}

// List returns the caller's notifications, newest first.
func (s *ServiceImpl) List(ctx context.Context) ([]Notification, error) {
	scope := user.ScopeFrom(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	feed := s.byUser[scope.Key()]
	out := make([]Notification, 0, len(feed))
	for i := len(feed) - 1; i >= 0; i-- {
		out = append(out, feed[i])
	}
	return out, nil
}

// Clear drops the caller's notifications, typically after the dashboard
// displayed them.
func (s *ServiceImpl) Clear(ctx context.Context) error {
	scope := user.ScopeFrom(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, scope.Key())
	return nil
}
