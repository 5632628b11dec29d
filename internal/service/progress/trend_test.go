package progress

import (
	"testing"
	"time"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

func finishedEntry(label string, minutes int, finish time.Time) domain.ProgressEntry {
	e := entry(label, "indigo", minutes, finish)
	e.FinishDate = &finish
	return e
}

func startedEntry(label string, minutes int, start time.Time) domain.ProgressEntry {
	e := entry(label, "indigo", minutes, start)
	e.StartDate = &start
	return e
}

func TestBuildTrend_MonthBuckets(t *testing.T) {
	jan := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)
	apr := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)

	entries := []domain.ProgressEntry{
		finishedEntry("Math", 90, jan),
		finishedEntry("Math", 30, jan),
		finishedEntry("English", 120, feb),
		finishedEntry("Math", 60, apr),
	}

	report := BuildTrend(entries, time.UTC)

	wantKeys := []string{"2024-01", "2024-02", "2024-04"}
	if len(report.MonthKeys) != len(wantKeys) {
		t.Fatalf("MonthKeys = %v, want %v", report.MonthKeys, wantKeys)
	}
	for i, key := range wantKeys {
		if report.MonthKeys[i] != key {
			t.Errorf("MonthKeys[%d] = %q, want %q", i, report.MonthKeys[i], key)
		}
	}

	if len(report.Series) != 2 {
		t.Fatalf("len(series) = %d, want 2", len(report.Series))
	}

	math := report.Series[0]
	if math.Label != "Math" {
		t.Fatalf("series 0 label = %q, want Math", math.Label)
	}
	// 120 min in January, nothing in February, 60 min in April.
	wantMath := []float64{2.0, 0, 1.0}
	for i, v := range wantMath {
		if math.Values[i] != v {
			t.Errorf("Math values[%d] = %v, want %v", i, math.Values[i], v)
		}
	}

	english := report.Series[1]
	wantEnglish := []float64{0, 2.0, 0}
	for i, v := range wantEnglish {
		if english.Values[i] != v {
			t.Errorf("English values[%d] = %v, want %v", i, english.Values[i], v)
		}
	}

	if report.MaxValue != 2.0 {
		t.Errorf("MaxValue = %v, want 2.0", report.MaxValue)
	}
}

func TestBuildTrend_FinishDatePreferredOverStart(t *testing.T) {
	start := time.Date(2024, 1, 30, 10, 0, 0, 0, time.UTC)
	finish := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	e := startedEntry("Math", 60, start)
	e.FinishDate = &finish

	report := BuildTrend([]domain.ProgressEntry{e}, time.UTC)

	if len(report.MonthKeys) != 1 || report.MonthKeys[0] != "2024-02" {
		t.Errorf("MonthKeys = %v, want [2024-02]", report.MonthKeys)
	}
}

func TestBuildTrend_SkipsUndatedEntries(t *testing.T) {
	undated := domain.ProgressEntry{
		Tag:     domain.Tag{Label: "Math", ColorVariant: "indigo"},
		Minutes: 60,
	}

	report := BuildTrend([]domain.ProgressEntry{undated}, time.UTC)

	if len(report.MonthKeys) != 0 || len(report.Series) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
	if report.MaxValue != 0 {
		t.Errorf("MaxValue = %v, want 0", report.MaxValue)
	}
}

func TestTrendReport_AxisMax(t *testing.T) {
	tests := []struct {
		name     string
		maxValue float64
		want     float64
	}{
		{name: "zero floors at one", maxValue: 0, want: 1},
		{name: "fraction rounds up", maxValue: 2.3, want: 3},
		{name: "whole value kept", maxValue: 4, want: 4},
		{name: "below one floors at one", maxValue: 0.2, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.TrendReport{MaxValue: tt.maxValue}
			if got := r.AxisMax(); got != tt.want {
				t.Errorf("AxisMax() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildTrendOrPlaceholder_RealDataWins(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	finish := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	report := BuildTrendOrPlaceholder([]domain.ProgressEntry{finishedEntry("Math", 60, finish)}, now, time.UTC)

	if len(report.Series) != 1 || report.Series[0].Label != "Math" {
		t.Errorf("series = %+v, want the real Math series", report.Series)
	}
}

func TestBuildTrendOrPlaceholder_EmptyHistoryGetsDemoSeries(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	report := BuildTrendOrPlaceholder(nil, now, time.UTC)

	if len(report.Series) == 0 {
		t.Fatal("placeholder series empty, want demo data")
	}
	if len(report.MonthKeys) != 6 {
		t.Fatalf("MonthKeys = %v, want six months", report.MonthKeys)
	}
	if report.MonthKeys[5] != "2024-03" {
		t.Errorf("last month key = %q, want 2024-03", report.MonthKeys[5])
	}
	if report.MonthKeys[0] != "2023-10" {
		t.Errorf("first month key = %q, want 2023-10", report.MonthKeys[0])
	}
	if report.MaxValue <= 0 {
		t.Errorf("MaxValue = %v, want positive demo value", report.MaxValue)
	}
	for _, series := range report.Series {
		if len(series.Values) != len(report.MonthKeys) {
			t.Errorf("series %q has %d values, want %d", series.Label, len(series.Values), len(report.MonthKeys))
		}
	}

	// A plain BuildTrend over the same input must stay empty.
	if plain := BuildTrend(nil, time.UTC); len(plain.Series) != 0 {
		t.Errorf("BuildTrend produced %d series from no data, want 0", len(plain.Series))
	}
}
