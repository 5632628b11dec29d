package progress

import (
	"testing"
	"time"
)

func instant(t time.Time) *time.Time {
	return &t
}

func TestRanges_SameDay(t *testing.T) {
	ranges := NewRanges(time.UTC)
	now := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)
	pred := ranges.SameDay(now)

	tests := []struct {
		name string
		date *time.Time
		want bool
	}{
		{name: "same day earlier hour", date: instant(time.Date(2024, 3, 13, 0, 0, 1, 0, time.UTC)), want: true},
		{name: "same day later hour", date: instant(time.Date(2024, 3, 13, 23, 59, 59, 0, time.UTC)), want: true},
		{name: "day before", date: instant(time.Date(2024, 3, 12, 23, 59, 59, 0, time.UTC)), want: false},
		{name: "day after", date: instant(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)), want: false},
		{name: "nil never matches", date: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pred(tt.date); got != tt.want {
				t.Errorf("SameDay(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestRanges_WeekStart(t *testing.T) {
	ranges := NewRanges(time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			// 2024-03-13 is a Wednesday; the week began Sunday 2024-03-10.
			name: "mid week",
			now:  time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC),
			want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday is its own week start",
			now:  time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday belongs to the week that started six days back",
			now:  time.Date(2024, 3, 16, 23, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ranges.WeekStart(tt.now); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestRanges_WeekWindowsHalfOpen(t *testing.T) {
	ranges := NewRanges(time.UTC)
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	weekStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7)

	current := ranges.CurrentWeek(now)
	previous := ranges.PreviousWeek(now)

	if !current(instant(weekStart)) {
		t.Error("weekStart excluded from current week, want included")
	}
	if current(instant(weekEnd)) {
		t.Error("weekEnd included in current week, want excluded (half-open)")
	}
	// The next week's window would include weekEnd as its own start.
	nextWeek := ranges.CurrentWeek(weekEnd.Add(time.Hour))
	if !nextWeek(instant(weekEnd)) {
		t.Error("weekEnd excluded from next week's window, want included")
	}

	if !previous(instant(weekStart.AddDate(0, 0, -7))) {
		t.Error("previous week start excluded, want included")
	}
	if previous(instant(weekStart)) {
		t.Error("current week start included in previous week, want excluded")
	}
	if previous(nil) || current(nil) {
		t.Error("nil date matched a week window, want no match")
	}
}

func TestRanges_FixedReferenceTimezone(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	ranges := NewRanges(tokyo)

	// 23:30 UTC on the 13th is already the 14th in UTC+9.
	now := time.Date(2024, 3, 13, 23, 30, 0, 0, time.UTC)
	pred := ranges.SameDay(now)

	sameLocalDay := time.Date(2024, 3, 14, 8, 0, 0, 0, tokyo)
	if !pred(instant(sameLocalDay)) {
		t.Error("date on the same local day excluded, want included")
	}

	utcSameDay := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	if pred(instant(utcSameDay)) {
		t.Error("date on a different local day included, want excluded")
	}
}
