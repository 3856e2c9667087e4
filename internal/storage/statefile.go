// Package storage persists the engine state blob and the session history.
// History is kept behind one Store contract with two interchangeable
// backends: a flat chronological log inside the state blob, and per-day
// daily-note records.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// Blob is the persisted state file layout. PomodoroHistory is the flat-log
// backend's data; it is still read after a switch to the daily-notes
// backend so older entries keep appearing until migrated.
type Blob struct {
	PomodoroState        *models.EngineState   `json:"pomodoroState,omitempty"`
	LastPomodoroDate     string                `json:"lastPomodoroDate,omitempty"`
	PomodoroHistory      []models.HistoryEntry `json:"pomodoroHistory,omitempty"`
	LastSelectedTaskPath string                `json:"lastSelectedTaskPath,omitempty"`
}

// StateFile is the JSON state blob on disk. All access goes through Load,
// Save or Update so concurrent writers cannot clobber each other's fields.
type StateFile struct {
	mu   sync.Mutex
	path string
}

func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

func (f *StateFile) Path() string {
	return f.path
}

func (f *StateFile) Load() (Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *StateFile) load() (Blob, error) {
	var blob Blob
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return blob, nil
		}
		return blob, err
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		return blob, err
	}
	return blob, nil
}

func (f *StateFile) save(blob Blob) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}

// Update applies fn to the current blob and writes the result back.
func (f *StateFile) Update(fn func(*Blob) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	blob, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(&blob); err != nil {
		return err
	}
	return f.save(blob)
}
