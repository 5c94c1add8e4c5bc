package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs a job whenever its cron expression comes due.
type Scheduler struct {
	schedule cron.Schedule
	job      func(ctx context.Context) error
	interval time.Duration
	now      func() time.Time
	done     chan struct{}
}

// NewScheduler parses a standard five-field cron expression.
func NewScheduler(expr string, job func(ctx context.Context) error) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return &Scheduler{
		schedule: schedule,
		job:      job,
		interval: 15 * time.Second,
		now:      time.Now,
		done:     make(chan struct{}),
	}, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run checks the schedule on every tick until ctx ends or Stop is called.
// Runs never overlap: a run that outlasts its slot skips the missed activations.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	next := s.schedule.Next(s.now())
	log.Info().Time("next_run", next).Msg("Starting extraction scheduler")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping extraction scheduler")
			return
		case <-s.done:
			log.Info().Msg("Stopping extraction scheduler")
			return
		case <-ticker.C:
			now := s.now()
			if now.Before(next) {
				continue
			}
			if err := s.job(ctx); err != nil {
				log.Error().Err(err).Msg("Scheduled extraction failed")
			}
			next = s.schedule.Next(s.now())
			log.Info().Time("next_run", next).Msg("Scheduled extraction done")
		}
	}
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.done)
}
