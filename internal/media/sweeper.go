package media

import (
	"context"
	"log/slog"
	"time"

	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/robfig/cron/v3"
)

// Sweeper periodically removes generated media older than the retention window.
type Sweeper struct {
	store     *Store
	retention time.Duration
	cron      *cron.Cron
	logger    *logger.Logger
}

// NewSweeper schedules Store.Sweep on a standard five-field cron schedule.
func NewSweeper(store *Store, retention time.Duration, schedule string, log *logger.Logger) (*Sweeper, error) {
	s := &Sweeper{
		store:     store,
		retention: retention,
		cron:      cron.New(),
		logger:    log.WithComponent("media-sweeper"),
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running the schedule in the background.
func (s *Sweeper) Start() {
	s.logger.Info("media sweeper started",
		slog.Duration("retention", s.retention),
		slog.String("dir", s.store.Root()),
	)
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) run() {
	removed, err := s.store.Sweep(s.retention, time.Now())
	if err != nil {
		s.logger.Error("media sweep failed", slog.String("error", err.Error()), slog.Int("removed", removed))
		return
	}
	if removed > 0 {
		s.logger.Info("media sweep completed", slog.Int("removed", removed))
	}
}
