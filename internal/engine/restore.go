package engine

import (
	"log"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/config"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// Restore loads the persisted state and reconciles any session that was
// live when the process last exited. Corrupt or stale sessions are
// discarded defensively; a running session has its remaining time
// replayed from the active periods, and a countdown that finished while
// we were gone takes the completion path instead of silently losing the
// zero-crossing.
func (e *Engine) Restore() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	blob, err := e.file.Load()
	if err != nil {
		return err
	}
	e.lastTaskPath = blob.LastSelectedTaskPath
	if blob.PomodoroState == nil {
		return nil
	}
	st := *blob.PomodoroState
	now := e.now()

	sess := st.CurrentSession
	if sess == nil {
		if st.NextSessionType != "" {
			e.state.NextSessionType = st.NextSessionType
			e.state.TimeRemaining = e.defaultMinutes(st.NextSessionType) * 60
		}
		return nil
	}

	switch {
	case sess.StartTime.After(now):
		log.Printf("engine: discarding session %s with future start time %s", sess.ID, sess.StartTime)
		e.persistLocked()
		return nil
	case now.Sub(sess.StartTime) > 24*time.Hour || !models.SameDay(sess.StartTime, now):
		log.Printf("engine: discarding stale session %s from %s", sess.ID, sess.StartTime.Format("2006-01-02 15:04"))
		e.persistLocked()
		return nil
	}

	e.state = st
	e.notified = st.InOvertime

	if !st.IsRunning {
		// Paused sessions never advance: the stored remaining time stands.
		return nil
	}

	// Replay the active periods against the wall clock; the last period
	// was open the whole time we were gone.
	elapsed := sess.ActualDuration(now)
	remaining := sess.PlannedDuration*60 - int(elapsed.Seconds())
	e.state.TimeRemaining = remaining

	if remaining <= 0 {
		if e.cfg.Behavior.Mode == config.ModeManual {
			e.state.InOvertime = true
			sess.Overtime = true
			if !e.notified {
				e.notified = true
				e.emit(OvertimeEntered{Session: *sess, Remaining: remaining})
			}
			e.persistLocked()
			e.countdown = e.timer.Start(remaining, true)
			e.startTrackingLocked()
			return nil
		}
		e.timer.Stop()
		next := e.nextTypeLocked(sess.Type)
		entry := e.finalizeLocked(now)
		e.appendHistoryLocked(entry)
		e.emitFinalized(entry, next)
		e.state = e.idleState()
		e.state.NextSessionType = next
		e.state.TimeRemaining = e.defaultMinutes(next) * 60
		e.persistLocked()
		return nil
	}

	e.persistLocked()
	e.countdown = e.timer.Start(remaining, e.cfg.Behavior.Mode == config.ModeManual)
	e.startTrackingLocked()
	return nil
}
