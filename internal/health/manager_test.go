package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/network"
)

type fakeLink struct {
	state network.ConnState
	last  time.Time
}

func (l *fakeLink) State() network.ConnState { return l.state }
func (l *fakeLink) LastReceived() time.Time  { return l.last }

type fakeJournal struct{ err error }

func (j fakeJournal) Count() (int64, error) { return 7, j.err }

func TestCheckLink(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.DefaultConfig()

	tests := []struct {
		name    string
		link    *fakeLink
		healthy bool
	}{
		{"connected", &fakeLink{network.StateConnected, now.Add(-time.Second)}, true},
		{"quiet", &fakeLink{network.StateConnected, now.Add(-time.Minute)}, false},
		{"awaiting", &fakeLink{network.StateAwaitingHello, now}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(cfg, nil, tt.link, nil)
			m.now = func() time.Time { return now }
			if healthy, msg := m.checkLink(); healthy != tt.healthy {
				t.Errorf("healthy = %v (%s)", healthy, msg)
			}
		})
	}
}

func TestRun_EmitsOnTransition(t *testing.T) {
	bus := events.NewEventBus()
	defer bus.Stop()
	got := make(chan events.HealthPayload, 4)
	bus.Subscribe(events.EventHealth, "test.health", func(_ context.Context, e events.Event) error {
		got <- e.Payload.(events.HealthPayload)
		return nil
	})

	j := &fakeJournal{}
	m := NewManager(config.DefaultConfig(), bus, nil, j)
	ctx := context.Background()

	m.run(ctx, "journal", m.checkJournal)
	m.run(ctx, "journal", m.checkJournal)
	j.err = errors.New("disk I/O error")
	m.run(ctx, "journal", m.checkJournal)

	seen := map[bool]int{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-got:
			seen[p.Healthy]++
		case <-time.After(time.Second):
			t.Fatal("missing health event")
		}
	}
	if seen[true] != 1 || seen[false] != 1 {
		t.Errorf("events = %v", seen)
	}
	select {
	case p := <-got:
		t.Errorf("unexpected event %+v", p)
	case <-time.After(50 * time.Millisecond):
	}

	if m.Healthy() {
		t.Error("manager healthy with a failing journal")
	}
	if r := m.Results()["journal"]; r.Healthy || r.Message == "" {
		t.Errorf("result = %+v", r)
	}
}
