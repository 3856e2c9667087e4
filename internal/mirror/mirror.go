package mirror

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// Mirror owns the markdown table file. Writes hold a guard for a short
// cool-down so the file-change notification fired by our own write is not
// reimported; a content hash of the last write backs the timed guard up,
// since notification delivery timing is not something we control.
type Mirror struct {
	path           string
	cooldown       time.Duration
	defaultPlanned int
	resolve        TaskResolver

	mu            sync.Mutex
	suppressUntil time.Time
	lastHash      [sha256.Size]byte
	hasHash       bool
}

func New(path string, cooldown time.Duration, defaultPlanned int, resolve TaskResolver) *Mirror {
	if defaultPlanned <= 0 {
		defaultPlanned = 25
	}
	return &Mirror{
		path:           path,
		cooldown:       cooldown,
		defaultPlanned: defaultPlanned,
		resolve:        resolve,
	}
}

func (m *Mirror) Path() string {
	return m.path
}

// Rebuild regenerates the whole table from the given history and writes
// it out, arming the reimport guard for the write plus cool-down window.
func (m *Mirror) Rebuild(entries []models.HistoryEntry) error {
	content := []byte(Generate(entries))

	m.mu.Lock()
	defer m.mu.Unlock()

	m.suppressUntil = time.Now().Add(m.cooldown)
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, content, 0644); err != nil {
		return err
	}
	m.lastHash = sha256.Sum256(content)
	m.hasHash = true
	m.suppressUntil = time.Now().Add(m.cooldown)
	return nil
}

// ShouldImport decides whether externally observed file content warrants
// a reparse. Self-triggered notifications are filtered two ways: the
// timed guard window, and a hash match against our own last write.
func (m *Mirror) ShouldImport(content []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Now().Before(m.suppressUntil) {
		return false
	}
	if m.hasHash && sha256.Sum256(content) == m.lastHash {
		return false
	}
	return true
}

// Import reads the file and parses it into history entries, regardless
// of guard state. Used by the explicit import command.
func (m *Mirror) Import(now time.Time) ([]models.HistoryEntry, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), m.defaultPlanned, now, m.resolve), nil
}
