package engine

import (
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// Event is the closed set of engine notifications. Observers receive a
// concrete variant and type-switch on it; payloads are copies, never
// live engine state.
type Event interface {
	isEvent()
}

// Started fires when a session begins running.
type Started struct {
	Session models.Session
}

// Ticked fires on every timer tick while a session runs.
type Ticked struct {
	Session   models.Session
	Remaining int // seconds, negative in overtime
}

// Completed fires when a session finalizes having reached its target.
type Completed struct {
	Session  models.Session
	NextType models.SessionType
}

// Interrupted fires when a session finalizes short of its target.
type Interrupted struct {
	Session models.Session
}

// OvertimeEntered fires once per session, when a manual-mode countdown
// crosses zero and keeps running.
type OvertimeEntered struct {
	Session   models.Session
	Remaining int
}

func (Started) isEvent()         {}
func (Ticked) isEvent()          {}
func (Completed) isEvent()       {}
func (Interrupted) isEvent()     {}
func (OvertimeEntered) isEvent() {}

// Subscribe registers an observer for engine events. Observers are
// invoked synchronously from engine operations and must not call back
// into the engine; hand the event off to a channel instead.
func (e *Engine) Subscribe(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

func (e *Engine) emit(ev Event) {
	for _, fn := range e.observers {
		fn(ev)
	}
}
