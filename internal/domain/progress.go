package domain

import (
	"math"
	"time"
)

// Tag labels a progress entry with its owning plan and a palette variant.
// The variant is a presentation convenience assigned per build, not identity.
type Tag struct {
	Label        string `json:"label"`
	ColorVariant string `json:"color_variant"`
}

// ProgressEntry is one analytics record derived from a single task. Entries
// are recomputed on demand from the plan collection and never persisted.
type ProgressEntry struct {
	ID            string     `json:"id"`
	PlanID        string     `json:"plan_id"`
	TaskID        string     `json:"task_id"`
	Tag           Tag        `json:"tag"`
	Minutes       int        `json:"minutes"`
	ReferenceDate *time.Time `json:"reference_date,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	FinishDate    *time.Time `json:"finish_date,omitempty"`
}

// ProgressSegment aggregates tracked minutes for one plan tag within a range.
type ProgressSegment struct {
	Label        string  `json:"label"`
	ColorVariant string  `json:"color_variant"`
	Minutes      int     `json:"minutes"`
	Hours        float64 `json:"hours"`
}

// AngleSpan is a cumulative slice of a proportional (donut-style) chart,
// in degrees. Spans of a report always sum to a full circle.
type AngleSpan struct {
	Label        string  `json:"label"`
	ColorVariant string  `json:"color_variant"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
}

// SegmentReport is the proportional-reporting output for one time range.
type SegmentReport struct {
	Segments     []ProgressSegment `json:"segments"`
	TotalMinutes int               `json:"total_minutes"`
	Spans        []AngleSpan       `json:"spans"`
}

// TrendSeries is one plan's monthly hours, aligned to the report's MonthKeys.
type TrendSeries struct {
	Label        string    `json:"label"`
	ColorVariant string    `json:"color_variant"`
	Values       []float64 `json:"values"`
}

// TrendReport is the per-month trend output across all history.
type TrendReport struct {
	MonthKeys []string      `json:"month_keys"`
	Series    []TrendSeries `json:"series"`
	MaxValue  float64       `json:"max_value"`
}

// AxisMax returns a value safe for axis scaling: ceil of the maximum series
// value, floored at 1 so downstream division never hits zero.
func (r *TrendReport) AxisMax() float64 {
	m := math.Ceil(r.MaxValue)
	if m < 1 {
		return 1
	}
	return m
}

// WeekComparison is the week-over-week tracked-minutes comparison.
type WeekComparison struct {
	CurrentWeekMinutes  int     `json:"current_week_minutes"`
	PreviousWeekMinutes int     `json:"previous_week_minutes"`
	Diff                int     `json:"diff"`
	PercentChange       float64 `json:"percent_change"`
}

// MonthKey buckets an instant into its calendar month in the given location.
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}

// ParseMonthKey parses a month key back into the first instant of the month.
func ParseMonthKey(key string) (time.Time, error) {
	return time.Parse("2006-01", key)
}
