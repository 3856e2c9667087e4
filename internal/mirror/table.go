// Package mirror maintains the human-editable markdown table projection
// of the session history. Generation is always a full deterministic
// rewrite from authoritative history; parsing is schema-tolerant and
// skips bad rows instead of failing the document.
package mirror

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

const (
	dateLayout       = "Jan 2, 2006"
	legacyDateLayout = "Jan 2"
	isoDateLayout    = "2006-01-02"
	clockLayout      = "15:04"
	kitchenLayout    = "3:04 PM"
)

var header = []string{"Date", "Start", "End", "Minutes", "Planned", "Task", "Category", "Status", "ID"}

// Generate renders the full history as a pipe-delimited table, newest
// session first. Output is deterministic: the same history always yields
// byte-identical text.
func Generate(entries []models.HistoryEntry) string {
	sorted := make([]models.HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})

	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = strings.Repeat("-", len(header[i]))
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, e := range sorted {
		task := "-"
		if e.TaskPath != "" {
			task = "[[" + e.TaskPath + "]]"
		}
		status := "interrupted"
		if e.Completed {
			status = "completed"
		}
		cells := []string{
			e.StartTime.Format(dateLayout),
			e.StartTime.Format(clockLayout),
			e.EndTime.Format(clockLayout),
			strconv.Itoa(e.ActualMinutes()),
			strconv.Itoa(e.PlannedDuration),
			task,
			string(e.Type),
			status,
			e.ID,
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// TaskResolver maps a bracketed task link to a concrete path. Returning
// "" keeps the literal link text.
type TaskResolver func(name string) string

// Parse reads a mirror table back into history entries. It accepts the
// current 9-column layout and the older 8-column layout without the
// planned column (defaulting planned to defaultPlanned). Rows with an
// unparseable date, a missing id or too few columns are skipped. Each
// entry gets a single synthetic active period of [start, start+actual]
// because per-pause granularity is not recoverable from the table.
func Parse(content string, defaultPlanned int, now time.Time, resolve TaskResolver) []models.HistoryEntry {
	var entries []models.HistoryEntry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := splitRow(line)
		if isHeaderRow(cells) {
			continue
		}
		entry, ok := parseRow(cells, defaultPlanned, now, resolve)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func splitRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isHeaderRow(cells []string) bool {
	if len(cells) == 0 {
		return true
	}
	first := cells[0]
	if strings.EqualFold(first, header[0]) {
		return true
	}
	return first != "" && strings.Trim(first, "-:") == ""
}

func parseRow(cells []string, defaultPlanned int, now time.Time, resolve TaskResolver) (models.HistoryEntry, bool) {
	var entry models.HistoryEntry

	// Newest schema has 9 columns; the legacy layout lacks Planned.
	var dateC, startC, endC, minutesC, plannedC, taskC, categoryC, statusC, idC string
	switch {
	case len(cells) >= 9:
		dateC, startC, endC, minutesC, plannedC = cells[0], cells[1], cells[2], cells[3], cells[4]
		taskC, categoryC, statusC, idC = cells[5], cells[6], cells[7], cells[8]
	case len(cells) == 8:
		dateC, startC, endC, minutesC = cells[0], cells[1], cells[2], cells[3]
		taskC, categoryC, statusC, idC = cells[4], cells[5], cells[6], cells[7]
		plannedC = ""
	default:
		return entry, false
	}

	if idC == "" || idC == "-" {
		return entry, false
	}
	day, ok := parseDate(dateC, now)
	if !ok {
		return entry, false
	}

	start := day
	if t, ok := parseClock(startC); ok {
		start = day.Add(t)
	}

	planned := defaultPlanned
	if plannedC != "" {
		if v, err := strconv.Atoi(plannedC); err == nil {
			planned = v
		}
	}
	minutes := planned
	if v, err := strconv.Atoi(minutesC); err == nil {
		minutes = v
	}

	end := start.Add(time.Duration(minutes) * time.Minute)
	if t, ok := parseClock(endC); ok {
		end = day.Add(t)
		if end.Before(start) {
			end = end.Add(24 * time.Hour)
		}
	}

	entry = models.HistoryEntry{
		ID:              idC,
		Type:            models.SessionType(categoryC),
		TaskPath:        parseTaskCell(taskC, resolve),
		PlannedDuration: planned,
		StartTime:       start,
		EndTime:         end,
		Completed:       strings.EqualFold(statusC, "completed"),
		Interrupted:     strings.EqualFold(statusC, "interrupted"),
	}
	periodEnd := start.Add(time.Duration(minutes) * time.Minute)
	entry.ActivePeriods = []models.ActivePeriod{{StartTime: start, EndTime: &periodEnd}}
	return entry, true
}

func parseDate(cell string, now time.Time) (time.Time, bool) {
	if t, err := time.ParseInLocation(dateLayout, cell, now.Location()); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(isoDateLayout, cell, now.Location()); err == nil {
		return t, true
	}
	// Bare "Mon D" assumes the current year.
	if t, err := time.ParseInLocation(legacyDateLayout, cell, now.Location()); err == nil {
		return t.AddDate(now.Year(), 0, 0), true
	}
	return time.Time{}, false
}

func parseClock(cell string) (time.Duration, bool) {
	for _, layout := range []string{clockLayout, kitchenLayout} {
		if t, err := time.Parse(layout, cell); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
		}
	}
	return 0, false
}

func parseTaskCell(cell string, resolve TaskResolver) string {
	if cell == "" || cell == "-" {
		return ""
	}
	if strings.HasPrefix(cell, "[[") && strings.HasSuffix(cell, "]]") {
		name := strings.TrimSuffix(strings.TrimPrefix(cell, "[["), "]]")
		if resolve != nil {
			if path := resolve(name); path != "" {
				return path
			}
		}
		return name
	}
	return cell
}
