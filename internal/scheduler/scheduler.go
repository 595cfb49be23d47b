// Package scheduler drives the daily automated posting run.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/pipeline"
)

// Runner is the pipeline operation the scheduler fires.
type Runner interface {
	GenerateAndPublish(ctx context.Context, trigger pipeline.Trigger) (*pipeline.RunResult, error)
}

// Status is a point-in-time snapshot of the scheduler.
type Status struct {
	Running  bool       `json:"running"`
	Time     string     `json:"time"`
	Timezone string     `json:"timezone"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

// Scheduler fires one pipeline run per day at a fixed local wall-clock
// time. It holds at most one registered job; repeated starts are no-ops.
type Scheduler struct {
	timeOfDay string
	timezone  string
	runner    Runner

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	running bool
}

// New creates a scheduler for the configured daily time. The configuration
// is not validated here; Start reports bad values.
func New(cfg *config.ScheduleConfig, runner Runner) *Scheduler {
	return &Scheduler{
		timeOfDay: cfg.Time,
		timezone:  cfg.Timezone,
		runner:    runner,
	}
}

// Start registers the daily job and begins waiting for the next firing
// time. Starting an already-running scheduler is a logged no-op; the
// existing job keeps its schedule.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Info().Msg("Scheduler already running")
		return nil
	}

	hour, minute, err := config.ParseTimeOfDay(s.timeOfDay)
	if err != nil {
		return fmt.Errorf("invalid schedule time: %w", err)
	}

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", s.timezone, err)
	}

	// The wall-clock spec plus the location keeps firings at the same
	// local time across DST transitions.
	spec := fmt.Sprintf("%d %d * * *", minute, hour)

	c := cron.New(cron.WithLocation(loc))
	entryID, err := c.AddFunc(spec, s.run)
	if err != nil {
		return fmt.Errorf("registering schedule: %w", err)
	}

	c.Start()
	s.cron = c
	s.entryID = entryID
	s.running = true

	next := c.Entry(entryID).Schedule.Next(time.Now().In(loc))
	log.Info().
		Str("time", s.timeOfDay).
		Str("timezone", s.timezone).
		Time("next_run", next).
		Msg("Scheduler started")

	return nil
}

// Stop deactivates the daily job. A run already in progress is not
// interrupted. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.cron = nil
	s.running = false

	log.Info().Msg("Scheduler stopped")
}

// Running reports whether the daily job is registered.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the schedule settings, the running state, and the next
// firing time when running.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:  s.running,
		Time:     s.timeOfDay,
		Timezone: s.timezone,
	}

	if s.running {
		next := s.cron.Entry(s.entryID).Next
		if !next.IsZero() {
			status.NextRun = &next
		}
	}

	return status
}

// RunNow executes one pipeline run immediately, independent of the daily
// schedule and of whether the scheduler is running. The run counts as
// manual; only timer firings count as scheduled.
func (s *Scheduler) RunNow(ctx context.Context) (*pipeline.RunResult, error) {
	return s.runner.GenerateAndPublish(ctx, pipeline.TriggerManual)
}

func (s *Scheduler) run() {
	log.Info().Msg("Scheduled post triggered")

	result, err := s.runner.GenerateAndPublish(context.Background(), pipeline.TriggerScheduled)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled run aborted")
		return
	}
	if !result.Success {
		log.Error().Str("error", result.Error).Msg("Scheduled run failed")
		return
	}

	log.Info().Str("post_id", result.PostID).Msg("Scheduled run completed")
}
