package models

import (
	"time"
)

type SessionType string

const (
	SessionTypeWork       SessionType = "work"
	SessionTypeShortBreak SessionType = "short-break"
	SessionTypeLongBreak  SessionType = "long-break"
)

// IsBreak reports whether the type is either break variant.
func (t SessionType) IsBreak() bool {
	return t == SessionTypeShortBreak || t == SessionTypeLongBreak
}

// ActivePeriod is one contiguous running interval within a session.
// EndTime is nil only for the period currently being accumulated, and
// at most one period per session may be open at a time.
type ActivePeriod struct {
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Session is the live, mutable session owned by the engine while active.
type Session struct {
	ID              string         `json:"id"`
	Type            SessionType    `json:"type"`
	TaskPath        string         `json:"task_path,omitempty"`
	PlannedDuration int            `json:"planned_duration"` // in minutes
	StartTime       time.Time      `json:"start_time"`
	EndTime         *time.Time     `json:"end_time,omitempty"`
	Completed       bool           `json:"completed"`
	Interrupted     bool           `json:"interrupted"`
	Overtime        bool           `json:"overtime"`
	OvertimeSeconds int            `json:"overtime_seconds,omitempty"`
	ActivePeriods   []ActivePeriod `json:"active_periods"`
}

// HistoryEntry is a finalized session as stored in history. Entries are
// appended once and never mutated in place.
type HistoryEntry struct {
	ID              string         `json:"id"`
	Type            SessionType    `json:"type"`
	TaskPath        string         `json:"task_path,omitempty"`
	PlannedDuration int            `json:"planned_duration"` // in minutes
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	Completed       bool           `json:"completed"`
	Interrupted     bool           `json:"interrupted"`
	ActivePeriods   []ActivePeriod `json:"active_periods"`
}

// Entry projects a finalized session into its immutable history form.
func (s *Session) Entry() HistoryEntry {
	var end time.Time
	if s.EndTime != nil {
		end = *s.EndTime
	}
	periods := make([]ActivePeriod, len(s.ActivePeriods))
	copy(periods, s.ActivePeriods)
	return HistoryEntry{
		ID:              s.ID,
		Type:            s.Type,
		TaskPath:        s.TaskPath,
		PlannedDuration: s.PlannedDuration,
		StartTime:       s.StartTime,
		EndTime:         end,
		Completed:       s.Completed,
		Interrupted:     s.Interrupted,
		ActivePeriods:   periods,
	}
}

// EngineState is the persisted snapshot of the timer engine.
type EngineState struct {
	IsRunning       bool        `json:"is_running"`
	TimeRemaining   int         `json:"time_remaining"` // seconds, negative in overtime
	CurrentSession  *Session    `json:"current_session,omitempty"`
	NextSessionType SessionType `json:"next_session_type,omitempty"`
	InOvertime      bool        `json:"in_overtime"`
}

// Task is a work item a session can be associated with.
type Task struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Archived bool   `json:"archived"`
}
