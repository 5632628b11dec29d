package progress

import (
	"math"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

const fullCircle = 360.0

// BuildSegments sums tracked minutes per plan tag for entries inside the
// given range. Segments keep first-appearance order. The report also carries
// cumulative angle spans proportional to each segment's share; when nothing
// tracked, the whole circle is a single neutral span rather than an error.
func BuildSegments(entries []domain.ProgressEntry, within RangePredicate) domain.SegmentReport {
	report := domain.SegmentReport{
		Segments: make([]domain.ProgressSegment, 0),
	}

	indexByLabel := make(map[string]int)
	for i := range entries {
		entry := &entries[i]
		if entry.Minutes <= 0 {
			continue
		}
		if within != nil && !within(entry.ReferenceDate) {
			continue
		}

		idx, ok := indexByLabel[entry.Tag.Label]
		if !ok {
			idx = len(report.Segments)
			indexByLabel[entry.Tag.Label] = idx
			report.Segments = append(report.Segments, domain.ProgressSegment{
				Label:        entry.Tag.Label,
				ColorVariant: entry.Tag.ColorVariant,
			})
		}
		report.Segments[idx].Minutes += entry.Minutes
		report.TotalMinutes += entry.Minutes
	}

	for i := range report.Segments {
		report.Segments[i].Hours = roundTo(float64(report.Segments[i].Minutes)/60, 2)
	}

	report.Spans = buildSpans(report.Segments, report.TotalMinutes)
	return report
}

func buildSpans(segments []domain.ProgressSegment, totalMinutes int) []domain.AngleSpan {
	if totalMinutes <= 0 {
		return []domain.AngleSpan{{ColorVariant: "neutral", Start: 0, End: fullCircle}}
	}

	spans := make([]domain.AngleSpan, 0, len(segments))
	cumulative := 0
	for i := range segments {
		start := fullCircle * float64(cumulative) / float64(totalMinutes)
		cumulative += segments[i].Minutes
		end := fullCircle * float64(cumulative) / float64(totalMinutes)
		spans = append(spans, domain.AngleSpan{
			Label:        segments[i].Label,
			ColorVariant: segments[i].ColorVariant,
			Start:        start,
			End:          end,
		})
	}
	return spans
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
