package engine

import (
	"context"
	"errors"
	"log"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// ErrAlreadyTracking is the non-fatal "tracking already active" answer a
// TaskTracker may give; the engine absorbs it silently.
var ErrAlreadyTracking = errors.New("time tracking already active")

// TaskTracker is the external task and time-tracking collaborator.
type TaskTracker interface {
	StartTracking(ctx context.Context, taskPath string) error
	StopTracking(ctx context.Context, taskPath string) error
	LookupTask(ctx context.Context, path string) (*models.Task, error)
}

// NoopTracker satisfies TaskTracker when no tracking integration is
// configured.
type NoopTracker struct{}

func (NoopTracker) StartTracking(context.Context, string) error { return nil }
func (NoopTracker) StopTracking(context.Context, string) error  { return nil }
func (NoopTracker) LookupTask(context.Context, string) (*models.Task, error) {
	return nil, nil
}

func (e *Engine) startTrackingLocked() {
	sess := e.state.CurrentSession
	if sess == nil || sess.TaskPath == "" || e.tracking {
		return
	}
	err := e.tracker.StartTracking(context.Background(), sess.TaskPath)
	if err != nil && !errors.Is(err, ErrAlreadyTracking) {
		log.Printf("engine: start tracking %s: %v", sess.TaskPath, err)
		return
	}
	e.tracking = true
}

func (e *Engine) stopTrackingLocked() {
	sess := e.state.CurrentSession
	if sess == nil || !e.tracking {
		return
	}
	if err := e.tracker.StopTracking(context.Background(), sess.TaskPath); err != nil {
		log.Printf("engine: stop tracking %s: %v", sess.TaskPath, err)
	}
	e.tracking = false
}
