package progress

import "time"

// RangePredicate reports whether a reference date falls inside a window.
// A nil date never matches.
type RangePredicate func(t *time.Time) bool

// Ranges builds date-window predicates against a fixed reference timezone.
// The location is chosen once per deployment, never re-derived per entry.
type Ranges struct {
	loc *time.Location
}

func NewRanges(loc *time.Location) Ranges {
	if loc == nil {
		loc = time.UTC
	}
	return Ranges{loc: loc}
}

func (r Ranges) Location() *time.Location {
	return r.loc
}

// SameDay matches dates on the same calendar day as now.
func (r Ranges) SameDay(now time.Time) RangePredicate {
	ny, nm, nd := now.In(r.loc).Date()
	return func(t *time.Time) bool {
		if t == nil {
			return false
		}
		y, m, d := t.In(r.loc).Date()
		return y == ny && m == nm && d == nd
	}
}

// WeekStart returns the start of day of the first day of now's week. Weeks
// begin at weekday offset zero (Sunday).
func (r Ranges) WeekStart(now time.Time) time.Time {
	local := now.In(r.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	return day.AddDate(0, 0, -int(local.Weekday()))
}

// CurrentWeek matches the half-open window [weekStart, weekStart+7d).
func (r Ranges) CurrentWeek(now time.Time) RangePredicate {
	start := r.WeekStart(now)
	end := start.AddDate(0, 0, 7)
	return r.between(start, end)
}

// PreviousWeek matches the half-open window [weekStart-7d, weekStart).
func (r Ranges) PreviousWeek(now time.Time) RangePredicate {
	end := r.WeekStart(now)
	start := end.AddDate(0, 0, -7)
	return r.between(start, end)
}

func (r Ranges) between(start, end time.Time) RangePredicate {
	return func(t *time.Time) bool {
		if t == nil {
			return false
		}
		local := t.In(r.loc)
		return !local.Before(start) && local.Before(end)
	}
}
