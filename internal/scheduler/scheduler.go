// Package scheduler runs background maintenance: the daily journal cleanup
// and journal statistics.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
)

// Journal is the store the scheduler maintains. *db.Journal satisfies it.
type Journal interface {
	Prune(before time.Time, maxRows int) (int64, error)
	Count() (int64, error)
	Size() (int64, error)
}

// Scheduler manages periodic background tasks.
type Scheduler struct {
	cfg      *config.Config
	eventBus *events.EventBus
	journal  Journal
	now      func() time.Time
}

// NewScheduler creates a new task scheduler. journal may be nil when the
// journal is disabled.
func NewScheduler(cfg *config.Config, eventBus *events.EventBus, journal Journal) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		eventBus: eventBus,
		journal:  journal,
		now:      time.Now,
	}
}

// Start runs the scheduled tasks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Info().Msg("scheduler started")

	if s.journal != nil {
		go s.runJournalCleanerLoop(ctx)
		go s.runStatsCollectionLoop(ctx)
	}

	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}

// runJournalCleanerLoop prunes the journal at the configured time each day.
func (s *Scheduler) runJournalCleanerLoop(ctx context.Context) {
	for {
		nextRun := s.calculateNextCleanupTime()
		sleepDuration := nextRun.Sub(s.now())
		if sleepDuration <= 0 {
			sleepDuration = 24 * time.Hour
		}

		log.Info().
			Time("next_run", nextRun).
			Dur("sleep", sleepDuration).
			Msg("journal cleaner scheduled")

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleepDuration):
			s.RunJournalCleaner(ctx)
		}
	}
}

// RunJournalCleaner removes journal rows past the retention window and
// reports the outcome on the bus.
func (s *Scheduler) RunJournalCleaner(ctx context.Context) (int64, error) {
	jcfg := s.cfg.ApplicationData.Journal
	before := s.now().Add(-time.Duration(jcfg.RetentionDays) * 24 * time.Hour)

	log.Info().
		Int("retention_days", jcfg.RetentionDays).
		Int("max_rows", jcfg.MaxRows).
		Msg("running journal cleaner")

	removed, err := s.journal.Prune(before, jcfg.MaxRows)
	if err != nil {
		log.Warn().Err(err).Msg("journal cleaner failed")
		return 0, err
	}

	if s.eventBus != nil {
		s.eventBus.Emit(ctx, events.Event{
			Type:   events.EventJournalPruned,
			Source: "scheduler",
			Payload: events.JournalPrunedPayload{Removed: removed, Before: before},
		})
	}
	return removed, nil
}

// runStatsCollectionLoop logs journal statistics daily.
func (s *Scheduler) runStatsCollectionLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.collectStats()
		}
	}
}

func (s *Scheduler) collectStats() {
	rows, err := s.journal.Count()
	if err != nil {
		log.Warn().Err(err).Msg("failed to count journal rows")
		return
	}

	size, err := s.journal.Size()
	if err != nil {
		log.Warn().Err(err).Msg("failed to stat journal")
	}

	log.Info().
		Int64("state_changes", rows).
		Str("file_size", formatBytes(size)).
		Msg("daily journal stats collected")
}

// calculateNextCleanupTime returns the next occurrence of the configured
// HH:MM cleanup time.
func (s *Scheduler) calculateNextCleanupTime() time.Time {
	cleanupTime := s.cfg.ApplicationData.Journal.CleanupTime
	parts := strings.Split(cleanupTime, ":")

	hour, minute := 4, 0
	if len(parts) >= 2 {
		fmt.Sscanf(parts[0], "%d", &hour)
		fmt.Sscanf(parts[1], "%d", &minute)
	}

	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// formatBytes formats bytes into human-readable format.
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
