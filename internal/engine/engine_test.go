package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/config"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/storage"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/timer"
)

type testClock struct {
	now time.Time
}

func (c *testClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, cfg config.Config) (*Engine, *storage.Service, *testClock) {
	t.Helper()
	file := storage.NewStateFile(filepath.Join(t.TempDir(), "state.json"))
	svc := storage.NewService(storage.NewLogStore(file))
	e := New(cfg, file, svc, nil)
	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)}
	e.now = func() time.Time { return clock.now }
	t.Cleanup(e.Close)
	return e, svc, clock
}

func TestStart_Conflicts(t *testing.T) {
	e, _, _ := newTestEngine(t, config.DefaultConfig())

	if err := e.Start(models.SessionTypeWork, "", 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(models.SessionTypeWork, "", 0); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	e.Pause()
	if err := e.Start(models.SessionTypeWork, "", 0); !errors.Is(err, ErrPausedSessionExists) {
		t.Errorf("expected ErrPausedSessionExists, got %v", err)
	}
}

func TestStart_DefaultsAndClamping(t *testing.T) {
	e, _, _ := newTestEngine(t, config.DefaultConfig())

	if err := e.Start(models.SessionTypeShortBreak, "", 0); err != nil {
		t.Fatal(err)
	}
	st := e.State()
	if st.CurrentSession.PlannedDuration != 5 || st.TimeRemaining != 5*60 {
		t.Errorf("expected configured break duration, got %+v", st)
	}
	e.Stop()

	if err := e.Start(models.SessionTypeWork, "", 500); err != nil {
		t.Fatal(err)
	}
	if got := e.State().CurrentSession.PlannedDuration; got != 120 {
		t.Errorf("expected clamped duration 120, got %d", got)
	}
}

func TestPauseResume_ActivePeriods(t *testing.T) {
	e, _, clock := newTestEngine(t, config.DefaultConfig())
	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}

	clock.advance(5 * time.Minute)
	e.Pause()

	st := e.State()
	if st.IsRunning {
		t.Error("paused session must not report running")
	}
	periods := st.CurrentSession.ActivePeriods
	if len(periods) != 1 || periods[0].EndTime == nil {
		t.Fatalf("pause must close the open period, got %+v", periods)
	}
	if got := periods[0].EndTime.Sub(periods[0].StartTime); got != 5*time.Minute {
		t.Errorf("expected a 5m period, got %v", got)
	}

	// Pausing again changes nothing.
	e.Pause()
	if got := len(e.State().CurrentSession.ActivePeriods); got != 1 {
		t.Errorf("double pause must not add periods, got %d", got)
	}

	clock.advance(10 * time.Minute)
	e.Resume()
	st = e.State()
	if !st.IsRunning {
		t.Error("resumed session must report running")
	}
	periods = st.CurrentSession.ActivePeriods
	if len(periods) != 2 || periods[1].EndTime != nil {
		t.Fatalf("resume must open a fresh period, got %+v", periods)
	}
	// The pause gap never counts toward the session.
	if got := st.CurrentSession.ActualDuration(clock.now); got != 5*time.Minute {
		t.Errorf("expected 5m of active time, got %v", got)
	}
}

func TestStop_ClassifiesByReachedTarget(t *testing.T) {
	e, svc, clock := newTestEngine(t, config.DefaultConfig())

	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(10 * time.Minute)
	e.Stop()

	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(30 * time.Minute)
	e.Stop()

	entries, err := svc.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 finalized sessions, got %d", len(entries))
	}
	short, full := entries[0], entries[1]
	if short.Completed || !short.Interrupted {
		t.Errorf("10m of a 25m target must be interrupted: %+v", short)
	}
	if !full.Completed || full.Interrupted {
		t.Errorf("30m of a 25m target must be completed: %+v", full)
	}

	if st := e.State(); st.CurrentSession != nil || st.IsRunning {
		t.Errorf("stop must return the engine to idle, got %+v", st)
	}

	// Stop without a session is a no-op.
	e.Stop()
	entries, err = svc.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("idle stop must not append history, got %d entries", len(entries))
	}
}

func TestSwitch_Cadence(t *testing.T) {
	e, svc, clock := newTestEngine(t, config.DefaultConfig())

	// Three completed work sessions already on the books today; the one
	// being finalized makes four, which hits the long-break interval.
	for i := 0; i < 3; i++ {
		start := clock.now.Add(time.Duration(-3+i) * time.Hour)
		end := start.Add(25 * time.Minute)
		if err := svc.Add(models.HistoryEntry{
			ID:              string(rune('a' + i)),
			Type:            models.SessionTypeWork,
			PlannedDuration: 25,
			StartTime:       start,
			EndTime:         end,
			Completed:       true,
			ActivePeriods:   []models.ActivePeriod{{StartTime: start, EndTime: &end}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(25 * time.Minute)
	if err := e.Switch(); err != nil {
		t.Fatal(err)
	}

	st := e.State()
	if st.CurrentSession == nil || st.CurrentSession.Type != models.SessionTypeLongBreak {
		t.Fatalf("fourth completed work session must hand off to a long break, got %+v", st.CurrentSession)
	}

	// Any break hands off back to work.
	clock.advance(15 * time.Minute)
	if err := e.Switch(); err != nil {
		t.Fatal(err)
	}
	if got := e.State().CurrentSession.Type; got != models.SessionTypeWork {
		t.Errorf("break must hand off to work, got %q", got)
	}
}

func TestSwitch_ShortBreakBelowInterval(t *testing.T) {
	e, _, clock := newTestEngine(t, config.DefaultConfig())

	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(25 * time.Minute)
	if err := e.Switch(); err != nil {
		t.Fatal(err)
	}
	if got := e.State().CurrentSession.Type; got != models.SessionTypeShortBreak {
		t.Errorf("first completed work session must hand off to a short break, got %q", got)
	}
}

func TestAdjustSessionTime(t *testing.T) {
	e, _, clock := newTestEngine(t, config.DefaultConfig())
	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}

	clock.advance(5 * time.Minute)
	e.AdjustSessionTime(300)
	st := e.State()
	if st.TimeRemaining != 25*60+300 {
		t.Errorf("expected extended remaining, got %d", st.TimeRemaining)
	}
	// 5m elapsed plus 30m now remaining makes a 35m target.
	if st.CurrentSession.PlannedDuration != 35 {
		t.Errorf("expected recomputed planned duration 35, got %d", st.CurrentSession.PlannedDuration)
	}

	// Shrinking below zero floors at one second.
	e.AdjustSessionTime(-10 * 60 * 60)
	if got := e.State().TimeRemaining; got != 1 {
		t.Errorf("expected remaining floored at 1, got %d", got)
	}

	// No session, no effect.
	e.Stop()
	e.AdjustSessionTime(300)
	if got := e.State().CurrentSession; got != nil {
		t.Errorf("adjust on idle must stay idle, got %+v", got)
	}
}

func TestStartNext_DefaultsToWork(t *testing.T) {
	e, _, _ := newTestEngine(t, config.DefaultConfig())
	if err := e.StartNext(); err != nil {
		t.Fatal(err)
	}
	if got := e.State().CurrentSession.Type; got != models.SessionTypeWork {
		t.Errorf("with no precomputed successor the next session is work, got %q", got)
	}
}

func TestEvents(t *testing.T) {
	e, _, clock := newTestEngine(t, config.DefaultConfig())
	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := e.Start(models.SessionTypeWork, "projects/report.md", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(25 * time.Minute)
	e.Stop()

	if len(events) != 2 {
		t.Fatalf("expected Started and Completed, got %d events", len(events))
	}
	started, ok := events[0].(Started)
	if !ok {
		t.Fatalf("expected Started first, got %T", events[0])
	}
	if started.Session.TaskPath != "projects/report.md" {
		t.Errorf("unexpected started payload: %+v", started.Session)
	}
	if _, ok := events[1].(Completed); !ok {
		t.Errorf("expected Completed second, got %T", events[1])
	}

	events = nil
	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(time.Minute)
	e.Stop()
	if len(events) != 2 {
		t.Fatalf("expected Started and Interrupted, got %d events", len(events))
	}
	if _, ok := events[1].(Interrupted); !ok {
		t.Errorf("expected Interrupted, got %T", events[1])
	}
}

func TestFinalize_RecordsOvertime(t *testing.T) {
	e, svc, clock := newTestEngine(t, config.DefaultConfig())
	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(30 * time.Minute)
	e.Stop()

	entries, err := svc.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ActualMinutes(); got != 30 {
		t.Errorf("expected 30 actual minutes, got %d", got)
	}
}

func TestHandleSignal_DropsStaleCountdown(t *testing.T) {
	e, svc, clock := newTestEngine(t, config.DefaultConfig())

	// A break's zero-cross can still sit buffered in the signal channel
	// when the user switches right as the countdown hits zero.
	if err := e.Start(models.SessionTypeShortBreak, "", 5); err != nil {
		t.Fatal(err)
	}
	stale := timer.Signal{Remaining: 0, ZeroCrossed: true, Countdown: e.countdown, At: clock.now}

	clock.advance(5 * time.Minute)
	if err := e.Switch(); err != nil {
		t.Fatal(err)
	}
	fresh := e.State()
	if fresh.CurrentSession == nil || fresh.CurrentSession.Type != models.SessionTypeWork {
		t.Fatalf("expected a fresh work session, got %+v", fresh.CurrentSession)
	}

	e.handleSignal(stale)

	st := e.State()
	if st.CurrentSession == nil || st.CurrentSession.ID != fresh.CurrentSession.ID {
		t.Fatalf("stale zero-cross must not finalize the fresh session, got %+v", st.CurrentSession)
	}
	if !st.IsRunning || st.TimeRemaining != fresh.TimeRemaining {
		t.Errorf("stale tick must not touch the fresh countdown, got %+v", st)
	}
	entries, err := svc.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the switched break in history, got %d entries", len(entries))
	}
}

func TestHandleSignal_ManualModeOvertime(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Behavior.Mode = config.ModeManual
	e, svc, clock := newTestEngine(t, cfg)
	var overtime []OvertimeEntered
	e.Subscribe(func(ev Event) {
		if ot, ok := ev.(OvertimeEntered); ok {
			overtime = append(overtime, ot)
		}
	})

	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(25 * time.Minute)
	e.handleSignal(timer.Signal{Remaining: 0, ZeroCrossed: true, Countdown: e.countdown, At: clock.now})

	st := e.State()
	if !st.IsRunning || !st.InOvertime {
		t.Fatalf("manual mode keeps running past zero, got %+v", st)
	}
	if !st.CurrentSession.Overtime {
		t.Error("session must carry the overtime flag")
	}
	if len(overtime) != 1 {
		t.Fatalf("expected one overtime notification, got %d", len(overtime))
	}
	entries, err := svc.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("crossing zero in manual mode must not finalize, got %d entries", len(entries))
	}

	// Ticks keep flowing negative; the notification never repeats.
	e.handleSignal(timer.Signal{Remaining: -1, Countdown: e.countdown, At: clock.now})
	if got := e.State().TimeRemaining; got != -1 {
		t.Errorf("expected negative remaining, got %d", got)
	}
	if len(overtime) != 1 {
		t.Errorf("overtime notification fired again, got %d", len(overtime))
	}
}

func TestCompleteAtZero_AutoStartScheduling(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Behavior.AutoStartNext = true
	cfg.Behavior.AutoStartDelaySeconds = 3600
	e, _, clock := newTestEngine(t, cfg)

	if err := e.Start(models.SessionTypeWork, "", 25); err != nil {
		t.Fatal(err)
	}
	clock.advance(25 * time.Minute)
	e.handleSignal(timer.Signal{Remaining: 0, ZeroCrossed: true, Countdown: e.countdown, At: clock.now})

	if e.pendingStart == nil {
		t.Fatal("auto completion must schedule the next session")
	}

	// Starting a session by hand supersedes the scheduled auto-start.
	if err := e.StartNext(); err != nil {
		t.Fatal(err)
	}
	if e.pendingStart != nil {
		t.Error("manual start must cancel the scheduled auto-start")
	}
}

type fakeTracker struct {
	tasks    map[string]*models.Task
	tracking string
}

func (f *fakeTracker) StartTracking(_ context.Context, taskPath string) error {
	f.tracking = taskPath
	return nil
}

func (f *fakeTracker) StopTracking(context.Context, string) error {
	f.tracking = ""
	return nil
}

func (f *fakeTracker) LookupTask(_ context.Context, path string) (*models.Task, error) {
	return f.tasks[path], nil
}

func TestStartNext_SkipsArchivedTask(t *testing.T) {
	cfg := config.DefaultConfig()
	file := storage.NewStateFile(filepath.Join(t.TempDir(), "state.json"))
	svc := storage.NewService(storage.NewLogStore(file))
	tracker := &fakeTracker{tasks: map[string]*models.Task{
		"projects/report.md": {Path: "projects/report.md", Title: "Report", Archived: true},
	}}
	e := New(cfg, file, svc, tracker)
	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)}
	e.now = func() time.Time { return clock.now }
	t.Cleanup(e.Close)

	if err := e.Start(models.SessionTypeWork, "projects/report.md", 25); err != nil {
		t.Fatal(err)
	}
	if tracker.tracking != "projects/report.md" {
		t.Errorf("expected tracking to start, got %q", tracker.tracking)
	}
	clock.advance(time.Minute)
	e.Stop()
	if tracker.tracking != "" {
		t.Errorf("expected tracking to stop, got %q", tracker.tracking)
	}

	// The remembered task is archived now, so the next work session starts
	// without one.
	if err := e.StartNext(); err != nil {
		t.Fatal(err)
	}
	if got := e.State().CurrentSession.TaskPath; got != "" {
		t.Errorf("archived task must not be reused, got %q", got)
	}
}
