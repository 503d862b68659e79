package services

import (
	"math"
	"time"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

// Derived-field math shared by the workflow, recalculation, and
// escalation paths. Every checklist-bearing write recomputes all three
// progress fields together; none is ever set independently.

func taskCounts(checklist []models.Task) (total, completed int) {
	total = len(checklist)
	for _, t := range checklist {
		if t.Completed {
			completed++
		}
	}
	return total, completed
}

// progressPercentage is 0-100 rounded to two decimals, 0 for an empty
// checklist.
func progressPercentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}

// calendarDaysCeil is the absolute day distance between two instants,
// rounded up. Never negative.
func calendarDaysCeil(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}

// daysOverdue is 0 until the target passes, then grows by whole days.
func daysOverdue(target, now time.Time) int {
	if !now.After(target) {
		return 0
	}
	return calendarDaysCeil(target, now)
}

// daysVacant is 0 for an occupied unit or one with no vacancy start.
func daysVacant(u *models.Unit, now time.Time) int {
	if !u.IsVacant || u.VacantSince == nil {
		return 0
	}
	return calendarDaysCeil(*u.VacantSince, now)
}

// refreshTurnDerived recomputes every derived turn field from the
// checklist and dates.
func refreshTurnDerived(t *models.Turn, now time.Time) {
	t.TotalTasks, t.CompletedTasks = taskCounts(t.Checklist)
	t.ProgressPercentage = progressPercentage(t.CompletedTasks, t.TotalTasks)
	t.DaysInProgress = calendarDaysCeil(t.StartDate, now)
	t.DaysOverdue = daysOverdue(t.TargetCompletionDate, now)
}
