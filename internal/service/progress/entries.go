// Package progress derives reporting structures from the canonical plan
// collection. Every function here is pure: given the same plans and anchor
// instant it is deterministic, mutates nothing and performs no I/O, so calls
// may run concurrently without coordination.
package progress

import (
	"sort"
	"time"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

// Palette is the default cycle of tag color variants.
var Palette = []string{"indigo", "emerald", "amber", "rose", "sky", "violet"}

// TagColorer maps a plan's list position to a color variant. The default
// cycles Palette; injecting it keeps aggregation free of ordering semantics.
type TagColorer func(index int) string

// PaletteColorer cycles the given palette by plan index.
func PaletteColorer(palette []string) TagColorer {
	return func(index int) string {
		if len(palette) == 0 {
			return ""
		}
		return palette[index%len(palette)]
	}
}

// BuildEntries flattens the plan collection into one entry per task, tagged
// with the owning plan's title and color variant. Entries are sorted most
// recently started first; entries with no resolvable date sort last.
func BuildEntries(plans []domain.Plan, colorer TagColorer) []domain.ProgressEntry {
	if colorer == nil {
		colorer = PaletteColorer(Palette)
	}

	entries := make([]domain.ProgressEntry, 0)
	for planIdx := range plans {
		plan := &plans[planIdx]
		tag := domain.Tag{
			Label:        plan.Title,
			ColorVariant: colorer(planIdx),
		}

		for taskIdx := range plan.Tasks {
			task := &plan.Tasks[taskIdx]
			entries = append(entries, domain.ProgressEntry{
				ID:            plan.ID + ":" + task.ID,
				PlanID:        plan.ID,
				TaskID:        task.ID,
				Tag:           tag,
				Minutes:       task.TrackedMinutes,
				ReferenceDate: task.ReferenceDate(),
				StartDate:     optionalInstant(task.StartAt),
				FinishDate:    cloneInstant(task.CompletedAt),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a := sortInstant(&entries[i])
		b := sortInstant(&entries[j])
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	return entries
}

// sortInstant resolves the ordering key: startAt, falling back to createdAt.
// For canonical tasks StartDate already carries that fallback.
func sortInstant(e *domain.ProgressEntry) *time.Time {
	if e.StartDate != nil {
		return e.StartDate
	}
	return e.ReferenceDate
}

func optionalInstant(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	ts := t
	return &ts
}

func cloneInstant(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	ts := *t
	return &ts
}
