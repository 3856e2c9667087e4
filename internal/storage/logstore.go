package storage

import (
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// LogStore is backend A: the flat chronological log kept inside the
// state blob.
type LogStore struct {
	file *StateFile
}

func NewLogStore(file *StateFile) *LogStore {
	return &LogStore{file: file}
}

func (s *LogStore) Read() ([]models.HistoryEntry, error) {
	blob, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	entries := make([]models.HistoryEntry, len(blob.PomodoroHistory))
	copy(entries, blob.PomodoroHistory)
	sortEntries(entries)
	return entries, nil
}

func (s *LogStore) Write(entries []models.HistoryEntry) error {
	sorted := make([]models.HistoryEntry, len(entries))
	copy(sorted, entries)
	sortEntries(sorted)
	return s.file.Update(func(b *Blob) error {
		b.PomodoroHistory = sorted
		return nil
	})
}

func (s *LogStore) Add(entry models.HistoryEntry) error {
	return s.file.Update(func(b *Blob) error {
		b.PomodoroHistory = append(b.PomodoroHistory, entry)
		return nil
	})
}

func (s *LogStore) Delete(id string) error {
	return s.file.Update(func(b *Blob) error {
		kept := b.PomodoroHistory[:0]
		for _, e := range b.PomodoroHistory {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		b.PomodoroHistory = kept
		return nil
	})
}

// Clear drops all flat-log entries. Used as the last step of migration.
func (s *LogStore) Clear() error {
	return s.file.Update(func(b *Blob) error {
		b.PomodoroHistory = nil
		return nil
	})
}
