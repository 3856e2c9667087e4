package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/stats"
)

// Report renders a plain-text statistics report over the given history.
func Report(entries []models.HistoryEntry) string {
	now := time.Now()
	var b strings.Builder

	b.WriteString("Pomodoro Statistics Report\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n", now.Format("January 2, 2006 3:04 PM")))
	b.WriteString("=====================================\n\n")

	writeSection(&b, "ALL TIME", stats.Aggregate(entries))
	writeSection(&b, "LAST 7 DAYS", stats.Aggregate(stats.FilterRange(entries, now.AddDate(0, 0, -6), now)))
	writeSection(&b, fmt.Sprintf("TODAY (%s)", now.Format("Monday, January 2")), stats.Aggregate(stats.FilterDay(entries, now)))

	today := stats.FilterDay(entries, now)
	if len(today) > 0 {
		b.WriteString("Today's Sessions:\n")
		for i, e := range today {
			status := "interrupted"
			if e.Completed {
				status = "completed"
			}
			b.WriteString(fmt.Sprintf("  %d. [%s] %s - %s (%d min, %s)\n",
				i+1,
				e.Type,
				e.StartTime.Format("3:04 PM"),
				e.EndTime.Format("3:04 PM"),
				e.ActualMinutes(),
				status,
			))
		}
	}

	return b.String()
}

func writeSection(b *strings.Builder, title string, s stats.Stats) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("-", len(title)) + "\n")
	b.WriteString(fmt.Sprintf("Pomodoros Completed: %d\n", s.PomodorosCompleted))
	b.WriteString(fmt.Sprintf("Focus Time: %s\n", formatMinutes(s.TotalMinutes)))
	b.WriteString(fmt.Sprintf("Current Streak: %d\n", s.CurrentStreak))
	b.WriteString(fmt.Sprintf("Completion Rate: %d%%\n", s.CompletionRate))
	b.WriteString(fmt.Sprintf("Breaks: %d (%s)\n", s.BreaksCompleted, formatMinutes(s.BreakMinutes)))
	b.WriteString(fmt.Sprintf("Overtime: %s work, %s breaks\n", formatMinutes(s.OvertimeMinutes), formatMinutes(s.BreakOvertimeMinutes)))
	b.WriteString(fmt.Sprintf("Interrupted: %d of %d sessions (%d%%)\n", s.TotalInterrupted, s.TotalSessions, s.InterruptionRate))
	b.WriteString("\n")
}
