// Package cron runs named jobs on cron schedules.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of scheduled work. Run receives a context that is
// cancelled when the scheduler stops.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler wraps robfig/cron with per-job overlap protection: if a run is
// still in flight when its schedule fires again, the new firing is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. Jobs are added before Start.
func NewScheduler(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job. The schedule uses the standard five-field cron
// format. Returns an error for an unparsable schedule.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" {
		return fmt.Errorf("cron: job name is required")
	}
	if job.Run == nil {
		return fmt.Errorf("cron: job %s has no run function", job.Name)
	}

	var running sync.Mutex
	_, err := s.cron.AddFunc(job.Schedule, func() {
		if !running.TryLock() {
			s.logger.Warn("job still running, skipping this firing", "job", job.Name)
			return
		}
		defer running.Unlock()

		start := time.Now()
		if err := job.Run(s.ctx); err != nil {
			s.logger.Error("job failed", "job", job.Name, "error", err)
			return
		}
		s.logger.Debug("job finished", "job", job.Name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("cron: add job %s: %w", job.Name, err)
	}
	return nil
}

// Start begins firing schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the job context and waits for in-flight runs to finish or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cron: jobs did not finish: %w", ctx.Err())
	}
}
