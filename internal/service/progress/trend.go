package progress

import (
	"sort"
	"time"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

// BuildTrend buckets tracked minutes per plan tag per calendar month across
// all history. Each series carries one value (hours, 1 decimal) per month key;
// months a plan tracked nothing in are zero-filled. Entries with no
// resolvable date are excluded.
func BuildTrend(entries []domain.ProgressEntry, loc *time.Location) domain.TrendReport {
	if loc == nil {
		loc = time.UTC
	}

	type seriesAcc struct {
		label        string
		colorVariant string
		byMonth      map[string]int
	}

	monthSet := make(map[string]struct{})
	order := make([]string, 0)
	accByLabel := make(map[string]*seriesAcc)

	for i := range entries {
		entry := &entries[i]
		bucketDate := entry.FinishDate
		if bucketDate == nil {
			bucketDate = entry.StartDate
		}
		if bucketDate == nil {
			continue
		}

		key := domain.MonthKey(*bucketDate, loc)
		monthSet[key] = struct{}{}

		acc, ok := accByLabel[entry.Tag.Label]
		if !ok {
			acc = &seriesAcc{
				label:        entry.Tag.Label,
				colorVariant: entry.Tag.ColorVariant,
				byMonth:      make(map[string]int),
			}
			accByLabel[entry.Tag.Label] = acc
			order = append(order, entry.Tag.Label)
		}
		acc.byMonth[key] += entry.Minutes
	}

	monthKeys := make([]string, 0, len(monthSet))
	for key := range monthSet {
		monthKeys = append(monthKeys, key)
	}
	sort.Strings(monthKeys)

	report := domain.TrendReport{
		MonthKeys: monthKeys,
		Series:    make([]domain.TrendSeries, 0, len(order)),
	}

	for _, label := range order {
		acc := accByLabel[label]
		values := make([]float64, len(monthKeys))
		for i, key := range monthKeys {
			values[i] = roundTo(float64(acc.byMonth[key])/60, 1)
			if values[i] > report.MaxValue {
				report.MaxValue = values[i]
			}
		}
		report.Series = append(report.Series, domain.TrendSeries{
			Label:        label,
			ColorVariant: acc.colorVariant,
			Values:       values,
		})
	}

	return report
}

// placeholderValues are the illustrative first-run numbers shown before any
// real history exists. Presentation only; BuildTrend never produces them.
var placeholderValues = [][]float64{
	{1.5, 2.0, 3.5, 2.5, 4.0, 3.0},
	{0.5, 1.0, 1.5, 2.5, 2.0, 3.5},
}

var placeholderLabels = []string{"Study", "Reading"}

// BuildTrendOrPlaceholder returns the real trend when any history exists,
// otherwise a fixed demo series over the six months ending at now. The
// substitution is an explicit policy kept out of BuildTrend itself.
func BuildTrendOrPlaceholder(entries []domain.ProgressEntry, now time.Time, loc *time.Location) domain.TrendReport {
	report := BuildTrend(entries, loc)
	if len(report.MonthKeys) > 0 {
		return report
	}
	return placeholderTrend(now, loc)
}

func placeholderTrend(now time.Time, loc *time.Location) domain.TrendReport {
	if loc == nil {
		loc = time.UTC
	}

	months := len(placeholderValues[0])
	local := now.In(loc)
	// Anchor at the first of the month so month arithmetic never skips.
	anchor := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	monthKeys := make([]string, months)
	for i := 0; i < months; i++ {
		monthKeys[i] = domain.MonthKey(anchor.AddDate(0, i-months+1, 0), loc)
	}

	report := domain.TrendReport{
		MonthKeys: monthKeys,
		Series:    make([]domain.TrendSeries, 0, len(placeholderValues)),
	}
	colorer := PaletteColorer(Palette)
	for i, values := range placeholderValues {
		report.Series = append(report.Series, domain.TrendSeries{
			Label:        placeholderLabels[i],
			ColorVariant: colorer(i),
			Values:       append([]float64(nil), values...),
		})
		for _, v := range values {
			if v > report.MaxValue {
				report.MaxValue = v
			}
		}
	}
	return report
}
