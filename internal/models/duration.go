package models

import (
	"math"
	"time"
)

// PeriodsDuration sums the elapsed time of the given active periods.
// A period without an end is capped at now.
func PeriodsDuration(periods []ActivePeriod, now time.Time) time.Duration {
	var total time.Duration
	for _, p := range periods {
		end := now
		if p.EndTime != nil {
			end = *p.EndTime
		}
		if end.After(p.StartTime) {
			total += end.Sub(p.StartTime)
		}
	}
	return total
}

// ActualDuration returns the total active time of a live session.
func (s *Session) ActualDuration(now time.Time) time.Duration {
	return PeriodsDuration(s.ActivePeriods, now)
}

// ReachedTarget is the single classification rule for completed vs.
// interrupted: a session reached its target when the summed active time
// meets or exceeds the planned duration.
func (s *Session) ReachedTarget(now time.Time) bool {
	return s.ActualDuration(now) >= time.Duration(s.PlannedDuration)*time.Minute
}

// ActualDuration returns the total active time of a finalized entry.
// An open period (which should not survive finalization) is capped at
// the entry's end time.
func (e *HistoryEntry) ActualDuration() time.Duration {
	return PeriodsDuration(e.ActivePeriods, e.EndTime)
}

// ActualMinutes rounds the entry's active time to whole minutes.
func (e *HistoryEntry) ActualMinutes() int {
	return int(math.Round(e.ActualDuration().Minutes()))
}

// DayOf is the canonical "local calendar day" function: midnight in the
// time's own location. Every place that buckets sessions by day (history
// backend B, mirror dates, stats filters) goes through it.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}
