// Package stats computes aggregate statistics from finalized sessions.
// All functions are pure computations with no side effects; nothing here
// is ever persisted.
package stats

import (
	"math"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// Stats is the derived summary over a session collection.
type Stats struct {
	PomodorosCompleted     int // completed work sessions
	TotalMinutes           int // active minutes of completed work sessions
	CurrentStreak          int // trailing consecutive completed work sessions
	TotalWork              int
	CompletionRate         int // percent, completed work / total work
	BreaksCompleted        int
	BreakMinutes           int
	BreakOvertimeMinutes   int
	TotalSessions          int
	TotalInterrupted       int // across all session types
	InterruptionRate       int // percent, across all session types
	InterruptedWorkMinutes int // active minutes of interrupted work sessions
	OvertimeMinutes        int // max(0, actual-planned) over all work sessions
}

// Aggregate computes the full Stats from the given entries. Entries are
// expected in chronological order, which every history read guarantees.
func Aggregate(entries []models.HistoryEntry) Stats {
	var s Stats
	s.TotalSessions = len(entries)

	var work, breaks []models.HistoryEntry
	for _, e := range entries {
		switch {
		case e.Type == models.SessionTypeWork:
			work = append(work, e)
		case e.Type.IsBreak():
			breaks = append(breaks, e)
		}
		if e.Interrupted {
			s.TotalInterrupted++
		}
	}

	s.TotalWork = len(work)
	for _, e := range work {
		actual := e.ActualMinutes()
		if e.Completed {
			s.PomodorosCompleted++
			s.TotalMinutes += actual
		}
		if e.Interrupted {
			s.InterruptedWorkMinutes += actual
		}
		if over := actual - e.PlannedDuration; over > 0 {
			s.OvertimeMinutes += over
		}
	}

	for _, e := range breaks {
		actual := e.ActualMinutes()
		if e.Completed {
			s.BreaksCompleted++
			s.BreakMinutes += actual
		}
		if over := actual - e.PlannedDuration; over > 0 {
			s.BreakOvertimeMinutes += over
		}
	}

	// Trailing run of completed work sessions, scanning from the most
	// recent backward; any non-completed work session breaks the run.
	for i := len(work) - 1; i >= 0; i-- {
		if !work[i].Completed {
			break
		}
		s.CurrentStreak++
	}

	s.CompletionRate = rate(s.PomodorosCompleted, s.TotalWork)
	s.InterruptionRate = rate(s.TotalInterrupted, s.TotalSessions)
	return s
}

func rate(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// FilterRange keeps entries whose start falls within [from, to],
// comparing whole local calendar days so a day is never split by
// time-of-day.
func FilterRange(entries []models.HistoryEntry, from, to time.Time) []models.HistoryEntry {
	fromDay := models.DayOf(from)
	toDay := models.DayOf(to)
	var out []models.HistoryEntry
	for _, e := range entries {
		day := models.DayOf(e.StartTime)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterDay keeps entries started on the given local calendar day.
func FilterDay(entries []models.HistoryEntry, day time.Time) []models.HistoryEntry {
	return FilterRange(entries, day, day)
}
