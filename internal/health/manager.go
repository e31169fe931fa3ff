// Package health runs periodic checks on the switcher link, the journal and
// the host disk, and reports health transitions on the event bus.
package health

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/util"
)

// Link reports the switcher session. *network.Session satisfies it.
type Link interface {
	State() network.ConnState
	LastReceived() time.Time
}

// Journal is the part of the journal the checks need.
type Journal interface {
	Count() (int64, error)
}

// Result is the latest outcome of one check.
type Result struct {
	Healthy   bool      `json:"healthy"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Manager runs periodic health checks.
type Manager struct {
	cfg      *config.Config
	eventBus *events.EventBus
	link     Link
	journal  Journal
	now      func() time.Time

	mu      sync.Mutex
	results map[string]Result
}

// NewManager creates a health manager. journal may be nil.
func NewManager(cfg *config.Config, eventBus *events.EventBus, link Link, journal Journal) *Manager {
	return &Manager{
		cfg:      cfg,
		eventBus: eventBus,
		link:     link,
		journal:  journal,
		now:      time.Now,
		results:  make(map[string]Result),
	}
}

// Start launches the checks and blocks until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	timers := m.cfg.ApplicationData.Timers

	checks := []struct {
		name     string
		interval int
		fn       func() (bool, string)
	}{
		{"switcher_link", timers.GeneralHealthInterval, m.checkLink},
		{"journal", timers.JournalCheckInterval, m.checkJournal},
		{"disk_utilization", timers.JournalCheckInterval, m.checkDiskUtilization},
	}

	for _, check := range checks {
		check := check
		if check.interval <= 0 {
			continue
		}

		go func() {
			ticker := time.NewTicker(time.Duration(check.interval) * time.Second)
			defer ticker.Stop()

			log.Debug().Str("check", check.name).Msg("running initial health check")
			m.run(ctx, check.name, check.fn)

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					m.run(ctx, check.name, check.fn)
				}
			}
		}()
	}

	log.Info().Int("checks", len(checks)).Msg("health check manager started")

	<-ctx.Done()
	log.Info().Msg("health check manager stopped")
}

// RunAll runs every check once.
func (m *Manager) RunAll(ctx context.Context) {
	m.run(ctx, "switcher_link", m.checkLink)
	m.run(ctx, "journal", m.checkJournal)
	m.run(ctx, "disk_utilization", m.checkDiskUtilization)
}

// Results returns the latest result of every check that has run.
func (m *Manager) Results() map[string]Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Result, len(m.results))
	for k, v := range m.results {
		out[k] = v
	}
	return out
}

// Healthy reports whether every check passed on its last run.
func (m *Manager) Healthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if !r.Healthy {
			return false
		}
	}
	return true
}

// run records a check result and emits EventHealth when the check's health
// flips or it runs for the first time.
func (m *Manager) run(ctx context.Context, name string, fn func() (bool, string)) {
	healthy, message := fn()

	m.mu.Lock()
	prev, seen := m.results[name]
	m.results[name] = Result{Healthy: healthy, Message: message, CheckedAt: m.now()}
	m.mu.Unlock()

	if seen && prev.Healthy == healthy {
		return
	}

	ev := log.Info()
	if !healthy {
		ev = log.Warn()
	}
	ev.Str("check", name).Bool("healthy", healthy).Str("message", message).Msg("health changed")

	if m.eventBus != nil {
		m.eventBus.Emit(ctx, events.Event{
			Type:    events.EventHealth,
			Source:  "health_check",
			Payload: events.HealthPayload{Check: name, Healthy: healthy, Message: message},
		})
	}
}

// checkLink flags a session that is down or has gone quiet for half the
// receive timeout.
func (m *Manager) checkLink() (bool, string) {
	if m.link == nil {
		return false, "no switcher session"
	}
	if st := m.link.State(); st != network.StateConnected {
		return false, fmt.Sprintf("switcher %s", st)
	}

	quiet := m.now().Sub(m.link.LastReceived())
	if limit := m.cfg.GetSwitcher().Timeout() / 2; quiet > limit {
		return false, fmt.Sprintf("no packets for %s", quiet.Round(time.Second))
	}
	return true, ""
}

func (m *Manager) checkJournal() (bool, string) {
	if m.journal == nil {
		return true, "journal disabled"
	}
	n, err := m.journal.Count()
	if err != nil {
		return false, fmt.Sprintf("journal unreadable: %v", err)
	}
	return true, fmt.Sprintf("%d state changes", n)
}

// checkDiskUtilization alerts when the journal's volume is 90% full.
func (m *Manager) checkDiskUtilization() (bool, string) {
	path := filepath.Dir(m.cfg.ApplicationData.Journal.Path)
	usage, err := util.GetDiskUsage(path)
	if err != nil {
		return true, fmt.Sprintf("disk usage unavailable: %v", err)
	}

	message := fmt.Sprintf("disk usage at %.1f%% (%d MB free of %d MB)",
		usage.UsedPercent, usage.Free, usage.Total)
	return usage.UsedPercent < 90, message
}
