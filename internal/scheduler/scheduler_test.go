package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/pipeline"
)

type fakeRunner struct {
	calls  atomic.Int64
	result *pipeline.RunResult
	err    error

	mu       sync.Mutex
	triggers []pipeline.Trigger
}

func (f *fakeRunner) GenerateAndPublish(ctx context.Context, trigger pipeline.Trigger) (*pipeline.RunResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.triggers = append(f.triggers, trigger)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newScheduler(t *testing.T, timeOfDay, timezone string) (*Scheduler, *fakeRunner) {
	t.Helper()

	runner := &fakeRunner{result: &pipeline.RunResult{Success: true, PostID: "urn:li:share:1"}}
	s := New(&config.ScheduleConfig{Time: timeOfDay, Timezone: timezone}, runner)
	t.Cleanup(s.Stop)

	return s, runner
}

func TestStartStop(t *testing.T) {
	s, _ := newScheduler(t, "09:00", "America/New_York")

	require.False(t, s.Running())

	require.NoError(t, s.Start())
	require.True(t, s.Running())

	status := s.Status()
	require.True(t, status.Running)
	require.Equal(t, "09:00", status.Time)
	require.Equal(t, "America/New_York", status.Timezone)
	require.NotNil(t, status.NextRun)

	s.Stop()
	require.False(t, s.Running())
	require.Nil(t, s.Status().NextRun)
}

func TestStart_AlreadyRunning(t *testing.T) {
	s, _ := newScheduler(t, "09:00", "UTC")

	require.NoError(t, s.Start())
	first := s.Status().NextRun

	// A second start changes nothing.
	require.NoError(t, s.Start())
	require.True(t, s.Running())
	require.Equal(t, first, s.Status().NextRun)
}

func TestStart_InvalidTime(t *testing.T) {
	s, _ := newScheduler(t, "25:00", "UTC")

	err := s.Start()
	require.Error(t, err)
	require.False(t, s.Running())
}

func TestStart_InvalidTimezone(t *testing.T) {
	s, _ := newScheduler(t, "09:00", "Mars/Olympus_Mons")

	err := s.Start()
	require.Error(t, err)
	require.False(t, s.Running())
}

func TestStop_NotRunning(t *testing.T) {
	s, _ := newScheduler(t, "09:00", "UTC")

	// Must not panic.
	s.Stop()
	require.False(t, s.Running())
}

func TestRunNow(t *testing.T) {
	s, runner := newScheduler(t, "09:00", "UTC")

	result, err := s.RunNow(context.Background())
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, int64(1), runner.calls.Load())

	// RunNow works regardless of scheduler state and counts as a manual
	// trigger.
	require.False(t, s.Running())
	require.Equal(t, []pipeline.Trigger{pipeline.TriggerManual}, runner.triggers)
}

func TestNextRun_InFuture(t *testing.T) {
	s, _ := newScheduler(t, "09:00", "America/New_York")

	require.NoError(t, s.Start())

	next := s.Status().NextRun
	require.NotNil(t, next)
	require.True(t, next.After(time.Now()))
	require.True(t, next.Before(time.Now().Add(25*time.Hour)))

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	local := next.In(loc)
	require.Equal(t, 9, local.Hour())
	require.Equal(t, 0, local.Minute())
}

// The cron spec must track local wall-clock time across DST transitions,
// not a fixed UTC offset.
func TestSchedule_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse("0 9 * * *")
	require.NoError(t, err)

	// 2025-03-08 is the day before the spring-forward transition; start
	// before that day's firing so the two firings straddle the change.
	before := time.Date(2025, 3, 8, 8, 0, 0, 0, loc)

	first := schedule.Next(before)
	require.Equal(t, 9, first.In(loc).Hour())

	second := schedule.Next(first)
	require.Equal(t, 9, second.In(loc).Hour())

	// Local time stays 09:00 while the UTC gap between firings shrinks to
	// 23 hours across the transition.
	require.Equal(t, 23*time.Hour, second.Sub(first))
}
