package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/avista-project/avista/internal/events"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_ConnectionLifecycle(t *testing.T) {
	j := openJournal(t)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, st := range []string{"awaiting_hello", "connected", "disconnected"} {
		err := j.RecordConnection("studio", events.ConnectionStatePayload{
			ConnectionID: "c1",
			State:        st,
			Address:      "10.0.0.50:9910",
			At:           start.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	conns, err := j.Connections(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 1 {
		t.Fatalf("connections = %d", len(conns))
	}
	c := conns[0]
	if c.State != "disconnected" || !c.StartedAt.Equal(start) {
		t.Errorf("connection = %+v", c)
	}
	if c.EndedAt == nil || !c.EndedAt.Equal(start.Add(2*time.Minute)) {
		t.Errorf("ended_at = %v", c.EndedAt)
	}
}

func TestJournal_History(t *testing.T) {
	j := openJournal(t)

	j.RecordStateChange(events.StateChangedPayload{ConnectionID: "c1", Key: "auxes", Value: map[string]int{"0": 1}})
	j.RecordStateChange(events.StateChangedPayload{ConnectionID: "c1", Key: "mes", Value: nil})
	j.RecordStateChange(events.StateChangedPayload{ConnectionID: "c1", Key: "auxes", Value: map[string]int{"0": 2}})

	all, err := j.History("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("history = %d rows", len(all))
	}

	auxes, err := j.History("auxes", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(auxes) != 2 || string(auxes[0].Value) != `{"0":2}` {
		t.Errorf("auxes history = %+v", auxes)
	}
	if string(all[1].Value) != "null" {
		t.Errorf("removed subtree stored as %s", all[1].Value)
	}
}

func TestJournal_Prune(t *testing.T) {
	j := openJournal(t)
	old := time.Now().Add(-48 * time.Hour)

	j.RecordStateChange(events.StateChangedPayload{Key: "mes", At: old})
	for i := 0; i < 5; i++ {
		j.RecordStateChange(events.StateChangedPayload{Key: "tally"})
	}

	removed, err := j.Prune(time.Now().Add(-24*time.Hour), 3)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if n, _ := j.Count(); n != 3 {
		t.Errorf("remaining = %d", n)
	}
}

func TestJournal_BusSubscription(t *testing.T) {
	j := openJournal(t)
	bus := events.NewEventBus()
	defer bus.Stop()
	j.Subscribe(bus)

	ctx := context.Background()
	bus.EmitSync(ctx, events.Event{Type: events.EventStateChanged, Payload: events.StateChangedPayload{Key: "dsks"}})
	bus.EmitSync(ctx, events.Event{Type: events.EventHealth, Payload: events.HealthPayload{Check: "switcher", Healthy: true}})
	bus.EmitSync(ctx, events.Event{Type: events.EventHealth, Payload: events.HealthPayload{Check: "switcher", Message: "no packets"}})

	if n, _ := j.Count(); n != 1 {
		t.Errorf("state changes = %d", n)
	}
	alerts, err := j.UnacknowledgedAlerts()
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 || alerts[0].Message != "no packets" {
		t.Fatalf("alerts = %+v", alerts)
	}
	if err := j.AcknowledgeAlert(alerts[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := j.AcknowledgeAlert(999); err == nil {
		t.Error("acknowledged a missing alert")
	}
}
