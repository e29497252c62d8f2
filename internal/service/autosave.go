package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"mushaf/internal/logging"
)

// DefaultAutosave is the schedule used when none is configured.
const DefaultAutosave = "@every 30s"

const autosaveJob = "autosave"

// ── Autosave (cron) ────────────────────────────────────────

// StartAutosave schedules periodic saves of the open document. An empty
// schedule uses DefaultAutosave. Calling it again replaces the schedule.
func (s *ReaderService) StartAutosave(schedule string) error {
	if schedule == "" {
		schedule = DefaultAutosave
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, s.autosave); err != nil {
		return fmt.Errorf("autosave: invalid schedule %q: %w", schedule, err)
	}
	s.cronMu.Lock()
	if s.cronSched != nil {
		s.cronSched.Stop()
	}
	s.cronSched = c
	s.cronMu.Unlock()

	c.Start()
	logging.Logger().Info("autosave scheduled", slog.String("schedule", schedule))
	return nil
}

func (s *ReaderService) autosave() {
	if !s.saves.TryLock(autosaveJob) {
		logging.Logger().Debug("autosave still running, skipping")
		return
	}
	defer s.saves.Unlock(autosaveJob)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Save(ctx); err != nil {
		logging.Logger().Warn("autosave", slog.Any("error", err))
	}
}

// Stop cancels autosave, waits for a running save and closes the open
// document.
func (s *ReaderService) Stop(ctx context.Context) {
	s.cronMu.Lock()
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
	s.cronMu.Unlock()
	s.saves.WaitAll(ctx)

	if _, err := s.Close(ctx); err != nil {
		logging.Logger().Warn("close on stop", slog.Any("error", err))
	}
}
