package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background maintenance work run on a schedule.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on a six-field (with seconds) cron schedule.
type Scheduler struct {
	schedule string
	jobs     []Job
	cron     *cron.Cron
}

func New(schedule string, jobs ...Job) *Scheduler {
	// Prevent overlapping runs
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	return &Scheduler{
		schedule: schedule,
		jobs:     jobs,
		cron:     c,
	}
}

// Start registers every job and starts the cron loop. It blocks until ctx is
// cancelled, then waits for running jobs to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, job := range s.jobs {
		_, err := s.cron.AddFunc(s.schedule, func() {
			if err := s.RunOnce(ctx, job); err != nil {
				slog.Error("scheduled job failed", slog.String("job", job.Name()), slog.Any("error", err))
			}
		})
		if err != nil {
			return fmt.Errorf("failed to add cron job %s: %w", job.Name(), err)
		}
	}

	slog.Info("scheduler started", slog.String("schedule", s.schedule), slog.Int("jobs", len(s.jobs)))
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
	return ctx.Err()
}

// RunOnce runs job immediately, outside the schedule.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) error {
	start := time.Now()
	slog.Debug("running job", slog.String("job", job.Name()))

	if err := job.Run(ctx); err != nil {
		return fmt.Errorf("%s run failed: %w", job.Name(), err)
	}

	slog.Debug("job finished", slog.String("job", job.Name()), slog.Duration("duration", time.Since(start)))
	return nil
}
