package progress

import (
	"time"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

// CompareWeeks sums tracked minutes in the current and previous week windows
// and derives the week-over-week change. No rounding is applied here; callers
// round for display.
func CompareWeeks(entries []domain.ProgressEntry, now time.Time, ranges Ranges) domain.WeekComparison {
	current := ranges.CurrentWeek(now)
	previous := ranges.PreviousWeek(now)

	cmp := domain.WeekComparison{}
	for i := range entries {
		entry := &entries[i]
		if entry.Minutes <= 0 {
			continue
		}
		switch {
		case current(entry.ReferenceDate):
			cmp.CurrentWeekMinutes += entry.Minutes
		case previous(entry.ReferenceDate):
			cmp.PreviousWeekMinutes += entry.Minutes
		}
	}

	cmp.Diff = cmp.CurrentWeekMinutes - cmp.PreviousWeekMinutes
	switch {
	case cmp.PreviousWeekMinutes == 0 && cmp.CurrentWeekMinutes > 0:
		cmp.PercentChange = 100
	case cmp.PreviousWeekMinutes == 0:
		cmp.PercentChange = 0
	default:
		cmp.PercentChange = float64(cmp.Diff) / float64(cmp.PreviousWeekMinutes) * 100
	}

	return cmp
}
