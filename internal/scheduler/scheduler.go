package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Sweeper removes abandoned speech files older than maxAge.
type Sweeper interface {
	Sweep(maxAge time.Duration) (int, error)
}

// DigestSender sends the reminder digest.
type DigestSender interface {
	Send(ctx context.Context) (int, error)
}

// Scheduler runs the background housekeeping jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	logger    zerolog.Logger

	sweeper       Sweeper
	sweepInterval time.Duration
	maxAge        time.Duration

	digest     DigestSender
	digestCron string
}

// New creates a new Scheduler. Cron expressions are evaluated in loc.
func New(loc *time.Location, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		logger:    logger,
	}
}

// WithSpoolSweep registers the periodic spool cleanup.
func (s *Scheduler) WithSpoolSweep(sweeper Sweeper, interval, maxAge time.Duration) *Scheduler {
	s.sweeper = sweeper
	s.sweepInterval = interval
	s.maxAge = maxAge
	return s
}

// WithDigest registers the reminder digest on a cron expression.
func (s *Scheduler) WithDigest(digest DigestSender, cronExpr string) *Scheduler {
	s.digest = digest
	s.digestCron = cronExpr
	return s
}

// Start schedules the configured jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.sweeper == nil && s.digest == nil {
		s.logger.Info().Msg("scheduler: no jobs configured; nothing to schedule")
		return nil
	}

	if s.sweeper != nil {
		minutes := int(s.sweepInterval.Minutes())
		if minutes <= 0 {
			minutes = 15
		}
		if _, err := s.scheduler.Every(minutes).Minutes().Do(s.sweep); err != nil {
			return fmt.Errorf("schedule spool sweep: %w", err)
		}
	}

	if s.digest != nil {
		if _, err := s.scheduler.Cron(s.digestCron).Do(s.sendDigest); err != nil {
			return fmt.Errorf("schedule digest %q: %w", s.digestCron, err)
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) sweep() {
	removed, err := s.sweeper.Sweep(s.maxAge)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduler: spool sweep failed")
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("scheduler: swept stale speech files")
	}
}

func (s *Scheduler) sendDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.digest.Send(ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduler: reminder digest failed")
	}
}
