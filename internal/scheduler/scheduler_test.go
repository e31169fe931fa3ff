package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
)

type fakeJournal struct {
	before  time.Time
	maxRows int
}

func (f *fakeJournal) Prune(before time.Time, maxRows int) (int64, error) {
	f.before, f.maxRows = before, maxRows
	return 42, nil
}

func (f *fakeJournal) Count() (int64, error) { return 0, nil }
func (f *fakeJournal) Size() (int64, error)  { return 0, nil }

func TestCalculateNextCleanupTime(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ApplicationData.Journal.CleanupTime = "04:30"
	s := NewScheduler(cfg, nil, &fakeJournal{})

	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2026, 5, 1, 1, 0, 0, 0, time.UTC), time.Date(2026, 5, 1, 4, 30, 0, 0, time.UTC)},
		{time.Date(2026, 5, 1, 4, 30, 0, 0, time.UTC), time.Date(2026, 5, 2, 4, 30, 0, 0, time.UTC)},
		{time.Date(2026, 5, 31, 23, 0, 0, 0, time.UTC), time.Date(2026, 6, 1, 4, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		tt := tt
		s.now = func() time.Time { return tt.now }
		if got := s.calculateNextCleanupTime(); !got.Equal(tt.want) {
			t.Errorf("now %v: next = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestRunJournalCleaner(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ApplicationData.Journal.RetentionDays = 3
	cfg.ApplicationData.Journal.MaxRows = 1000

	bus := events.NewEventBus()
	defer bus.Stop()
	got := make(chan events.JournalPrunedPayload, 1)
	bus.Subscribe(events.EventJournalPruned, "test.pruned", func(_ context.Context, e events.Event) error {
		got <- e.Payload.(events.JournalPrunedPayload)
		return nil
	})

	fj := &fakeJournal{}
	s := NewScheduler(cfg, bus, fj)
	now := time.Date(2026, 5, 10, 4, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	removed, err := s.RunJournalCleaner(context.Background())
	if err != nil || removed != 42 {
		t.Fatalf("removed = %d, err = %v", removed, err)
	}
	if !fj.before.Equal(now.AddDate(0, 0, -3)) || fj.maxRows != 1000 {
		t.Errorf("prune(%v, %d)", fj.before, fj.maxRows)
	}

	select {
	case p := <-got:
		if p.Removed != 42 {
			t.Errorf("payload = %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no prune event")
	}
}

func TestFormatBytes(t *testing.T) {
	if got := formatBytes(1536); got != "1.50 KB" {
		t.Errorf("formatBytes(1536) = %s", got)
	}
	if got := formatBytes(12); got != "12 B" {
		t.Errorf("formatBytes(12) = %s", got)
	}
}
