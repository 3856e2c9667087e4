// Package engine owns the single current session and its run state. All
// mutation goes through the engine's methods; the background timer is the
// only other source of change, and it communicates through tick signals
// the engine consumes one at a time.
package engine

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/config"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/storage"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/timer"
)

var (
	// ErrAlreadyRunning rejects starting a session while one is running.
	ErrAlreadyRunning = errors.New("a session is already running")

	// ErrPausedSessionExists rejects starting a new session while a paused
	// one exists; it must be resumed or stopped first.
	ErrPausedSessionExists = errors.New("a paused session exists; resume or stop it first")
)

// Engine is the session state machine. One engine owns one EngineState;
// nothing outside the engine mutates it.
type Engine struct {
	mu sync.Mutex

	cfg     config.Config
	state   models.EngineState
	file    *storage.StateFile
	history *storage.Service
	timer   *timer.Timer
	tracker TaskTracker

	tracking     bool
	lastTaskPath string
	notified     bool // overtime notification already fired for this session
	observers    []func(Event)
	countdown    uint64 // id of the timer countdown currently being consumed
	pendingStart *time.Timer

	now func() time.Time
}

func New(cfg config.Config, file *storage.StateFile, history *storage.Service, tracker TaskTracker) *Engine {
	if tracker == nil {
		tracker = NoopTracker{}
	}
	e := &Engine{
		cfg:     cfg,
		file:    file,
		history: history,
		timer:   timer.New(),
		tracker: tracker,
		now:     time.Now,
	}
	e.state = e.idleState()
	return e
}

func (e *Engine) idleState() models.EngineState {
	return models.EngineState{
		TimeRemaining: e.cfg.Durations.WorkMinutes * 60,
	}
}

// State returns a snapshot of the engine state.
func (e *Engine) State() models.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state
	if e.state.CurrentSession != nil {
		sess := *e.state.CurrentSession
		st.CurrentSession = &sess
	}
	return st
}

// Run consumes timer signals until ctx is done. It must be running for
// the engine to observe ticks and zero-crossings.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-e.timer.Signals():
			e.handleSignal(sig)
		}
	}
}

// Close cancels the timer and any scheduled auto-start, then persists.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer.Stop()
	e.cancelPendingStartLocked()
	if e.state.IsRunning {
		e.closeOpenPeriodLocked(e.now())
		e.state.IsRunning = false
	}
	e.persistLocked()
}

// Start begins a new session. A zero or negative minutes value selects
// the configured duration for the type; out-of-range values are clamped.
func (e *Engine) Start(t models.SessionType, taskPath string, minutes int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked(t, taskPath, minutes)
}

func (e *Engine) startLocked(t models.SessionType, taskPath string, minutes int) error {
	if e.state.IsRunning {
		return ErrAlreadyRunning
	}
	if e.state.CurrentSession != nil {
		return ErrPausedSessionExists
	}

	if minutes <= 0 {
		minutes = e.defaultMinutes(t)
	}
	minutes = e.cfg.Durations.ClampDuration(string(t), minutes)

	now := e.now()
	sess := &models.Session{
		ID:              uuid.NewString(),
		Type:            t,
		TaskPath:        taskPath,
		PlannedDuration: minutes,
		StartTime:       now,
		ActivePeriods:   []models.ActivePeriod{{StartTime: now}},
	}
	e.state = models.EngineState{
		IsRunning:      true,
		TimeRemaining:  minutes * 60,
		CurrentSession: sess,
	}
	e.notified = false
	if taskPath != "" {
		e.lastTaskPath = taskPath
	}

	// A session starting now supersedes any scheduled auto-start.
	e.cancelPendingStartLocked()

	// Persist before arming the timer: a crash between the two must not
	// leave an armed timer with stale on-disk state.
	e.persistLocked()
	e.countdown = e.timer.Start(e.state.TimeRemaining, e.cfg.Behavior.Mode == config.ModeManual)
	e.startTrackingLocked()
	e.emit(Started{Session: *sess})
	return nil
}

func (e *Engine) defaultMinutes(t models.SessionType) int {
	switch t {
	case models.SessionTypeShortBreak:
		return e.cfg.Durations.ShortBreakMinutes
	case models.SessionTypeLongBreak:
		return e.cfg.Durations.LongBreakMinutes
	default:
		return e.cfg.Durations.WorkMinutes
	}
}

// Pause suspends the running session. No-op when not running.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsRunning {
		return
	}
	e.timer.Stop()
	e.closeOpenPeriodLocked(e.now())
	e.state.IsRunning = false
	e.stopTrackingLocked()
	e.persistLocked()
}

// Resume reopens a paused session. No-op when running or idle.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsRunning || e.state.CurrentSession == nil {
		return
	}
	now := e.now()
	sess := e.state.CurrentSession
	sess.ActivePeriods = append(sess.ActivePeriods, models.ActivePeriod{StartTime: now})
	e.state.IsRunning = true
	e.persistLocked()
	e.countdown = e.timer.Start(e.state.TimeRemaining, e.cfg.Behavior.Mode == config.ModeManual || e.state.InOvertime)
	e.startTrackingLocked()
}

// Stop finalizes the current session from any state and returns the
// engine to idle. No-op when no session exists.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.CurrentSession == nil {
		return
	}
	e.timer.Stop()
	entry := e.finalizeLocked(e.now())
	e.appendHistoryLocked(entry)
	e.emitFinalized(entry, "")
	e.state = e.idleState()
	e.persistLocked()
}

// Switch finalizes the current session and immediately starts the next
// one, work and breaks alternating on the configured cadence. Work
// sessions reuse the last selected eligible task.
func (e *Engine) Switch() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.CurrentSession == nil {
		return nil
	}
	e.timer.Stop()
	finishedType := e.state.CurrentSession.Type
	next := e.nextTypeLocked(finishedType)

	entry := e.finalizeLocked(e.now())
	e.appendHistoryLocked(entry)
	e.emitFinalized(entry, next)

	e.state = e.idleState()
	e.state.NextSessionType = next

	var taskPath string
	if next == models.SessionTypeWork {
		taskPath = e.eligibleTaskLocked()
	}
	return e.startLocked(next, taskPath, 0)
}

// AdjustSessionTime shifts the remaining time by deltaSeconds (floored
// at one second) and recomputes the planned duration so the target
// classification stays meaningful. No-op when no session exists.
func (e *Engine) AdjustSessionTime(deltaSeconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := e.state.CurrentSession
	if sess == nil {
		return
	}

	remaining := e.state.TimeRemaining + deltaSeconds
	if remaining < 1 {
		remaining = 1
	}
	if e.state.IsRunning {
		e.timer.Stop()
	}
	e.state.TimeRemaining = remaining
	e.state.InOvertime = false

	elapsed := sess.ActualDuration(e.now())
	planned := int(math.Round((elapsed.Seconds() + float64(remaining)) / 60))
	if planned < 1 {
		planned = 1
	}
	sess.PlannedDuration = planned

	e.persistLocked()
	if e.state.IsRunning {
		e.countdown = e.timer.Start(remaining, e.cfg.Behavior.Mode == config.ModeManual)
	}
}

// StartNext starts the precomputed next session type (work when none is
// set), reusing the last eligible task for work sessions.
func (e *Engine) StartNext() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.state.NextSessionType
	if next == "" {
		next = models.SessionTypeWork
	}
	var taskPath string
	if next == models.SessionTypeWork {
		taskPath = e.eligibleTaskLocked()
	}
	return e.startLocked(next, taskPath, 0)
}

// AssignTask reassigns the associated task of the live session.
func (e *Engine) AssignTask(taskPath string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := e.state.CurrentSession
	if sess == nil {
		return
	}
	e.stopTrackingLocked()
	sess.TaskPath = taskPath
	if taskPath != "" {
		e.lastTaskPath = taskPath
	}
	e.persistLocked()
	if e.state.IsRunning {
		e.startTrackingLocked()
	}
}

func (e *Engine) handleSignal(sig timer.Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsRunning || e.state.CurrentSession == nil {
		return // stale tick from a countdown stopped moments ago
	}
	// A replaced countdown's ticks (including its blocking zero-cross)
	// can still be buffered; they belong to a finalized session, never
	// the current one.
	if sig.Countdown != e.countdown {
		return
	}
	e.state.TimeRemaining = sig.Remaining

	if sig.ZeroCrossed {
		e.completeAtZeroLocked()
		return
	}

	// Checkpoint the countdown every ten ticks so a crash loses at most
	// a few seconds.
	if sig.Remaining%10 == 0 {
		e.persistLocked()
	}
	e.emit(Ticked{Session: *e.state.CurrentSession, Remaining: sig.Remaining})
}

// completeAtZeroLocked is the zero-crossing branch point: auto mode
// finalizes the session, manual mode lets it run into overtime.
func (e *Engine) completeAtZeroLocked() {
	if e.cfg.Behavior.Mode == config.ModeManual {
		e.state.InOvertime = true
		sess := e.state.CurrentSession
		sess.Overtime = true
		if !e.notified {
			e.notified = true
			e.emit(OvertimeEntered{Session: *sess, Remaining: e.state.TimeRemaining})
		}
		e.persistLocked()
		return
	}

	e.timer.Stop()
	finishedType := e.state.CurrentSession.Type
	next := e.nextTypeLocked(finishedType)

	entry := e.finalizeLocked(e.now())
	e.appendHistoryLocked(entry)
	e.emitFinalized(entry, next)

	e.state = e.idleState()
	e.state.NextSessionType = next
	e.state.TimeRemaining = e.defaultMinutes(next) * 60
	e.persistLocked()

	if e.cfg.Behavior.AutoStartNext {
		delay := time.Duration(e.cfg.Behavior.AutoStartDelaySeconds) * time.Second
		e.cancelPendingStartLocked()
		e.pendingStart = time.AfterFunc(delay, func() {
			if err := e.StartNext(); err != nil {
				log.Printf("engine: auto-start next session: %v", err)
			}
		})
	}
}

func (e *Engine) cancelPendingStartLocked() {
	if e.pendingStart != nil {
		e.pendingStart.Stop()
		e.pendingStart = nil
	}
}

// finalizeLocked closes the session: open period ended, end time
// stamped, completed/interrupted classified by the reached-target rule,
// overtime recorded. Returns the immutable history projection.
func (e *Engine) finalizeLocked(now time.Time) models.HistoryEntry {
	sess := e.state.CurrentSession
	e.closeOpenPeriodLocked(now)
	end := now
	sess.EndTime = &end

	actual := sess.ActualDuration(now)
	planned := time.Duration(sess.PlannedDuration) * time.Minute
	reached := actual >= planned
	sess.Completed = reached
	sess.Interrupted = !reached
	// Overtime never survives on an interrupted session.
	sess.Overtime = reached && actual > planned
	sess.OvertimeSeconds = 0
	if sess.Overtime {
		sess.OvertimeSeconds = int((actual - planned).Seconds())
	}

	e.stopTrackingLocked()
	return sess.Entry()
}

func (e *Engine) closeOpenPeriodLocked(now time.Time) {
	sess := e.state.CurrentSession
	if sess == nil || len(sess.ActivePeriods) == 0 {
		return
	}
	last := &sess.ActivePeriods[len(sess.ActivePeriods)-1]
	if last.EndTime == nil {
		end := now
		last.EndTime = &end
	}
}

// nextTypeLocked implements the cadence rule: after a work session,
// today's completed-work count plus the session being recorded decides
// between the break types; after any break the successor is work.
func (e *Engine) nextTypeLocked(finished models.SessionType) models.SessionType {
	if finished != models.SessionTypeWork {
		return models.SessionTypeWork
	}
	count := 1 // the work session about to be recorded
	if entries, err := e.history.Read(); err != nil {
		log.Printf("engine: reading history for cadence: %v", err)
	} else {
		today := models.DayOf(e.now())
		for _, entry := range entries {
			if entry.Type == models.SessionTypeWork && entry.Completed && models.DayOf(entry.StartTime).Equal(today) {
				count++
			}
		}
	}
	if count%e.cfg.Durations.LongBreakInterval == 0 {
		return models.SessionTypeLongBreak
	}
	return models.SessionTypeShortBreak
}

func (e *Engine) eligibleTaskLocked() string {
	if e.lastTaskPath == "" {
		return ""
	}
	task, err := e.tracker.LookupTask(context.Background(), e.lastTaskPath)
	if err != nil {
		log.Printf("engine: looking up task %s: %v", e.lastTaskPath, err)
		return ""
	}
	if task != nil && task.Archived {
		return ""
	}
	return e.lastTaskPath
}

func (e *Engine) appendHistoryLocked(entry models.HistoryEntry) {
	if err := e.history.Add(entry); err != nil {
		// The in-memory finalization stands; history append is retried by
		// the user, not rolled back into an ambiguous session state.
		log.Printf("engine: appending session %s to history: %v", entry.ID, err)
	}
}

func (e *Engine) emitFinalized(entry models.HistoryEntry, next models.SessionType) {
	sess := *e.state.CurrentSession
	if entry.Completed {
		e.emit(Completed{Session: sess, NextType: next})
	} else {
		e.emit(Interrupted{Session: sess})
	}
}

func (e *Engine) persistLocked() {
	st := e.state
	if e.state.CurrentSession != nil {
		sess := *e.state.CurrentSession
		st.CurrentSession = &sess
	}
	err := e.file.Update(func(b *storage.Blob) error {
		b.PomodoroState = &st
		b.LastPomodoroDate = models.DayOf(e.now()).Format("2006-01-02")
		b.LastSelectedTaskPath = e.lastTaskPath
		return nil
	})
	if err != nil {
		log.Printf("engine: persisting state: %v", err)
	}
}
