package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

func newDailyStore(t *testing.T) (*DailyStore, *LogStore) {
	t.Helper()
	residual := NewLogStore(NewStateFile(filepath.Join(t.TempDir(), "state.json")))
	vault := NewDailyNoteVault(t.TempDir(), true)
	return NewDailyStore(vault, residual), residual
}

func TestDailyStore_AddGroupsByDay(t *testing.T) {
	s, _ := newDailyStore(t)
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	if err := s.Add(histEntry("a", day1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(histEntry("b", day2)); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(histEntry("c", day1.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	got, err := s.readDay(models.DayOf(day1))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 entries in the first day note, got %d", len(got))
	}

	all, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries overall, got %d", len(all))
	}
	if all[0].ID != "a" || all[1].ID != "c" || all[2].ID != "b" {
		t.Errorf("expected chronological read, got %q %q %q", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestDailyStore_ReadMergesResidual(t *testing.T) {
	s, residual := newDailyStore(t)
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	if err := s.Add(histEntry("shared", day)); err != nil {
		t.Fatal(err)
	}
	// The residual flat log holds a stale copy of "shared" plus one entry
	// that was never migrated.
	stale := histEntry("shared", day)
	stale.Completed = false
	stale.Interrupted = true
	if err := residual.Add(stale); err != nil {
		t.Fatal(err)
	}
	if err := residual.Add(histEntry("unmigrated", day.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries after dedupe, got %d", len(got))
	}
	for _, e := range got {
		if e.ID == "shared" && !e.Completed {
			t.Error("daily-note copy must win over the residual copy")
		}
	}
}

func TestDailyStore_WriteClearsResidual(t *testing.T) {
	s, residual := newDailyStore(t)
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	if err := residual.Add(histEntry("old", day)); err != nil {
		t.Fatal(err)
	}

	if err := s.Write([]models.HistoryEntry{histEntry("new", day)}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("wholesale replace must drop residual entries too, got %+v", got)
	}
}

func TestDailyStore_DeleteFallsBackToResidual(t *testing.T) {
	s, residual := newDailyStore(t)
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	if err := s.Add(histEntry("noted", day)); err != nil {
		t.Fatal(err)
	}
	if err := residual.Add(histEntry("logged", day.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("noted"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("logged"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries left, got %+v", got)
	}
}
