package storage

import (
	"fmt"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// MigrationReport summarizes an A-to-B migration.
type MigrationReport struct {
	Entries int
	Days    int
}

// MigrateToDaily moves every flat-log entry into the per-day notes,
// grouped by calendar day, then clears the flat log. The flat log is
// only cleared after every group has been written, so a failed write
// leaves the source data intact.
func MigrateToDaily(from *LogStore, to *DailyStore) (MigrationReport, error) {
	entries, err := from.Read()
	if err != nil {
		return MigrationReport{}, fmt.Errorf("reading flat log: %w", err)
	}
	if len(entries) == 0 {
		return MigrationReport{}, nil
	}

	byDay := make(map[time.Time][]models.HistoryEntry)
	for _, e := range entries {
		day := models.DayOf(e.StartTime)
		byDay[day] = append(byDay[day], e)
	}

	for day, group := range byDay {
		existing, err := to.readDay(day)
		if err != nil {
			return MigrationReport{}, fmt.Errorf("migrating %s: %w", day.Format(dayFileLayout), err)
		}
		merged := mergeEntries(existing, group)
		if err := to.writeDay(day, merged); err != nil {
			return MigrationReport{}, fmt.Errorf("migrating %s: %w", day.Format(dayFileLayout), err)
		}
	}

	if err := from.Clear(); err != nil {
		return MigrationReport{}, fmt.Errorf("clearing flat log: %w", err)
	}
	return MigrationReport{Entries: len(entries), Days: len(byDay)}, nil
}
