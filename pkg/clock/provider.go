package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/internal/event_bus"
	"github.com/bachat/bachat/internal/utils"
)

// Provider is the application's notion of "now". In normal operation it
// delegates to the real clock; with dev mode enabled it serves a simulated
// instant that only moves through explicit operations, which is what makes
// the month-boundary logic testable from the dashboard.
//
// Provider implements utils.Clock, so anything taking the narrow interface
// can be handed either the provider or a MockClock.
type Provider struct {
	mu        sync.Mutex
	real      utils.Clock
	devMode   bool
	simulated time.Time
	listeners []func(time.Time)
	bus       *event_bus.EventBus
}

var _ utils.Clock = (*Provider)(nil)

// NewProvider creates a Provider bound to the given real clock. The bus is
// optional; when present, every state change also publishes a ClockChanged
// event for the dev panel.
func NewProvider(real utils.Clock, bus *event_bus.EventBus) *Provider {
	return &Provider{real: real, bus: bus}
}

// Now returns the simulated instant when dev mode is active, else real time.
func (p *Provider) Now() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.devMode {
		return p.simulated
	}
	return p.real.Now()
}

// Today returns the current calendar date as a YYYY-MM-DD string, in UTC.
func (p *Provider) Today() string {
	return p.Now().UTC().Format(DateLayout)
}

func (p *Provider) CurrentMonth() MonthKey {
	return MonthOf(p.Now())
}

func (p *Provider) IsDevMode() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.devMode
}

// EnableDevMode activates simulation. An empty start date begins simulation
// at the current real time; otherwise the simulated clock starts at noon UTC
// of the given date, which keeps later date-string truncation unambiguous.
func (p *Provider) EnableDevMode(startDate string) error {
	p.mu.Lock()
	start := p.real.Now()
	if startDate != "" {
		parsed, err := parseAtNoon(startDate)
		if err != nil {
			p.mu.Unlock()
			return err
		}
		start = parsed
	}
	p.devMode = true
	p.simulated = start
	p.mu.Unlock()

	log.Infof("dev clock enabled at %s", start.Format(time.RFC3339))
	p.notify()
	return nil
}

// DisableDevMode reverts to real time.
func (p *Provider) DisableDevMode() {
	p.mu.Lock()
	p.devMode = false
	p.simulated = time.Time{}
	p.mu.Unlock()

	log.Info("dev clock disabled, using real time")
	p.notify()
}

// SetDate jumps the simulated clock to noon UTC of the given calendar date,
// enabling dev mode if it is not active yet. Malformed dates are rejected
// instead of poisoning downstream date math.
func (p *Provider) SetDate(date string) error {
	parsed, err := parseAtNoon(date)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.devMode = true
	p.simulated = parsed
	p.mu.Unlock()

	log.Infof("dev clock set to %s", parsed.Format(time.RFC3339))
	p.notify()
	return nil
}

// AdvanceDays moves the simulated clock by n days; n may be negative.
// Enables dev mode from the current real time if it is not active yet.
func (p *Provider) AdvanceDays(n int) {
	p.mu.Lock()
	if !p.devMode {
		p.devMode = true
		p.simulated = p.real.Now()
	}
	p.simulated = p.simulated.AddDate(0, 0, n)
	now := p.simulated
	p.mu.Unlock()

	log.Infof("dev clock advanced %d day(s) to %s", n, now.Format(time.RFC3339))
	p.notify()
}

// AdvanceToNextMonth jumps the simulated clock to day 1 of the following
// month, preserving the time of day.
func (p *Provider) AdvanceToNextMonth() {
	p.mu.Lock()
	if !p.devMode {
		p.devMode = true
		p.simulated = p.real.Now()
	}
	t := p.simulated
	p.simulated = time.Date(t.Year(), t.Month()+1, 1, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	now := p.simulated
	p.mu.Unlock()

	log.Infof("dev clock jumped to next month: %s", now.Format(time.RFC3339))
	p.notify()
}

// OnChange registers an observer invoked synchronously after every
// state-changing operation, before that operation returns. No ordering is
// guaranteed between listeners.
func (p *Provider) OnChange(fn func(now time.Time)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Provider) notify() {
	p.mu.Lock()
	listeners := make([]func(time.Time), len(p.listeners))
	copy(listeners, p.listeners)
	devMode := p.devMode
	p.mu.Unlock()
	now := p.Now()

	for _, fn := range listeners {
		fn(now)
	}
	if p.bus != nil {
		err := p.bus.Publish(event_bus.NewEvent(context.Background(), event_bus.ClockChanged, event_bus.ClockChangedData{
			Now:     now,
			DevMode: devMode,
		}))
		if err != nil {
			log.Errorf("failed to publish clock change event: %v", err)
		}
	}
}

func parseAtNoon(date string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, time.UTC), nil
}
