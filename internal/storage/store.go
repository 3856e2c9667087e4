package storage

import (
	"errors"
	"sort"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

var (
	// ErrDailyNotesDisabled is returned when the daily-notes backend is
	// selected without daily notes being enabled. This is a configuration
	// error and must reach the caller, never be swallowed.
	ErrDailyNotesDisabled = errors.New("daily-notes backend requires daily notes to be enabled")

	// ErrNoteNotCreatable is returned when the per-day record for an entry
	// cannot be located or created.
	ErrNoteNotCreatable = errors.New("daily note could not be created")
)

// Store is the history persistence contract both backends implement.
// Read always returns entries sorted ascending by start time.
type Store interface {
	Read() ([]models.HistoryEntry, error)
	Write(entries []models.HistoryEntry) error
	Add(entry models.HistoryEntry) error
	Delete(id string) error
}

func sortEntries(entries []models.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime.Before(entries[j].StartTime)
	})
}

// mergeEntries deduplicates two entry sets by id; on conflict the entry
// from preferred wins. The result is sorted ascending by start time.
func mergeEntries(preferred, residual []models.HistoryEntry) []models.HistoryEntry {
	seen := make(map[string]bool, len(preferred))
	merged := make([]models.HistoryEntry, 0, len(preferred)+len(residual))
	for _, e := range preferred {
		seen[e.ID] = true
		merged = append(merged, e)
	}
	for _, e := range residual {
		if !seen[e.ID] {
			merged = append(merged, e)
		}
	}
	sortEntries(merged)
	return merged
}
