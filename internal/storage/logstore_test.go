package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

func newLogStore(t *testing.T) *LogStore {
	t.Helper()
	return NewLogStore(NewStateFile(filepath.Join(t.TempDir(), "state.json")))
}

func TestLogStore_AddAndSortedRead(t *testing.T) {
	s := newLogStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	// Added out of order; reads come back chronological.
	if err := s.Add(histEntry("later", base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(histEntry("earlier", base)); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "earlier" || got[1].ID != "later" {
		t.Errorf("expected chronological order, got %q then %q", got[0].ID, got[1].ID)
	}
}

func TestLogStore_Delete(t *testing.T) {
	s := newLogStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	if err := s.Add(histEntry("keep", base)); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(histEntry("drop", base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("drop"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("unexpected entries after delete: %+v", got)
	}

	// Deleting an unknown id is a no-op, not an error.
	if err := s.Delete("missing"); err != nil {
		t.Errorf("delete of unknown id: %v", err)
	}
}

func TestLogStore_WriteReplacesAndClear(t *testing.T) {
	s := newLogStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	if err := s.Add(histEntry("old", base)); err != nil {
		t.Fatal(err)
	}
	if err := s.Write([]models.HistoryEntry{histEntry("new", base.Add(time.Hour))}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("write must replace wholesale, got %+v", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	got, err = s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty log after clear, got %+v", got)
	}
}
