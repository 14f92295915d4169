// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/sales-summary/pkg/metrics"
)

// DefaultSchedule prunes history daily at 3:00 AM.
const DefaultSchedule = "0 3 * * *"

// Pruner deletes uploads recorded before cutoff. history.Repository
// satisfies it.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	pruner    Pruner
	retention time.Duration
	schedule  string
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    *slog.Logger
}

// NewScheduler creates a scheduler that prunes uploads older than
// retentionDays on the given cron schedule.
func NewScheduler(pruner Pruner, retentionDays int, schedule string, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	if schedule == "" {
		schedule = DefaultSchedule
	}

	return &Scheduler{
		cron:      c,
		pruner:    pruner,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  schedule,
		now:       time.Now,
		logger:    logger,
	}
}

// WithMetrics counts pruned uploads.
func (s *Scheduler) WithMetrics(m *metrics.Metrics) *Scheduler {
	s.metrics = m
	return s
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() { s.pruneHistory() })
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the history prune (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.pruneHistory()
}

// pruneHistory deletes uploads older than the retention window and returns
// how many were removed.
func (s *Scheduler) pruneHistory() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	s.logger.Info("starting upload history prune", slog.Time("cutoff", cutoff))

	pruned, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to prune upload history", slog.Any("error", err))
		return 0
	}

	s.metrics.AddPruned(pruned)
	s.logger.Info("upload history prune completed", slog.Int64("uploads_pruned", pruned))
	return pruned
}
