package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// entriesField is the frontmatter key holding a day's finalized sessions,
// encoded as a JSON array.
const entriesField = "pomodoros"

// DailyStore is backend B: history distributed across per-day notes.
// Reads transparently merge any residual flat-log entries so a backend
// switch never hides unmigrated history; on id conflict the daily-note
// copy wins.
type DailyStore struct {
	vault    NoteVault
	residual *LogStore
}

func NewDailyStore(vault NoteVault, residual *LogStore) *DailyStore {
	return &DailyStore{vault: vault, residual: residual}
}

func (s *DailyStore) Read() ([]models.HistoryEntry, error) {
	days, err := s.vault.Days()
	if err != nil {
		return nil, err
	}
	var own []models.HistoryEntry
	for _, day := range days {
		entries, err := s.readDay(day)
		if err != nil {
			return nil, err
		}
		own = append(own, entries...)
	}

	residual, err := s.residual.Read()
	if err != nil {
		return nil, err
	}
	return mergeEntries(own, residual), nil
}

func (s *DailyStore) Write(entries []models.HistoryEntry) error {
	byDay := make(map[time.Time][]models.HistoryEntry)
	for _, e := range entries {
		day := models.DayOf(e.StartTime)
		byDay[day] = append(byDay[day], e)
	}

	// Clear days that no longer have entries, then write the new groups.
	existing, err := s.vault.Days()
	if err != nil {
		return err
	}
	for _, day := range existing {
		if _, ok := byDay[models.DayOf(day)]; ok {
			continue
		}
		if err := s.writeDay(day, nil); err != nil {
			return err
		}
	}
	for day, group := range byDay {
		if err := s.writeDay(day, group); err != nil {
			return err
		}
	}

	// A wholesale replace covers residual flat-log data too; leaving it
	// would resurrect deleted entries through the merge on the next read.
	return s.residual.Clear()
}

func (s *DailyStore) Add(entry models.HistoryEntry) error {
	day := models.DayOf(entry.StartTime)
	entries, err := s.readDay(day)
	if err != nil {
		return err
	}
	return s.writeDay(day, append(entries, entry))
}

func (s *DailyStore) Delete(id string) error {
	days, err := s.vault.Days()
	if err != nil {
		return err
	}
	for _, day := range days {
		entries, err := s.readDay(day)
		if err != nil {
			return err
		}
		kept := entries[:0]
		for _, e := range entries {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		if len(kept) != len(entries) {
			return s.writeDay(day, kept)
		}
	}
	// Not in any daily note; it may still live in the residual log.
	return s.residual.Delete(id)
}

func (s *DailyStore) readDay(day time.Time) ([]models.HistoryEntry, error) {
	note, err := s.vault.GetOrCreate(day)
	if err != nil {
		return nil, err
	}
	raw, err := s.vault.ReadField(note, entriesField)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decoding %s field of %s: %w", entriesField, note, err)
	}
	return entries, nil
}

func (s *DailyStore) writeDay(day time.Time, entries []models.HistoryEntry) error {
	note, err := s.vault.GetOrCreate(day)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return s.vault.WriteField(note, entriesField, "")
	}
	sortEntries(entries)
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.vault.WriteField(note, entriesField, string(raw))
}
