package progress

import (
	"testing"
	"time"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

func dayTask(id string, start time.Time, minutes int) domain.Task {
	return domain.Task{
		ID:             id,
		Title:          id,
		Status:         domain.StatusInProgress,
		CreatedAt:      start,
		StartAt:        start,
		DueDate:        start,
		TrackedMinutes: minutes,
	}
}

func completedTask(id string, start, completed time.Time, minutes int) domain.Task {
	t := dayTask(id, start, minutes)
	t.Status = domain.StatusCompleted
	t.CompletedAt = &completed
	return t
}

func TestBuildEntries_PaletteCycling(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	plans := make([]domain.Plan, len(Palette)+2)
	for i := range plans {
		plans[i] = domain.Plan{
			ID:    "p",
			Title: "plan",
			Tasks: []domain.Task{dayTask("t", start, 10)},
		}
	}

	entries := BuildEntries(plans, nil)
	if len(entries) != len(plans) {
		t.Fatalf("len(entries) = %d, want %d", len(entries), len(plans))
	}

	// Ordering is stable for equal start instants, so entry i belongs to plan i.
	for i, entry := range entries {
		want := Palette[i%len(Palette)]
		if entry.Tag.ColorVariant != want {
			t.Errorf("entry %d variant = %q, want %q", i, entry.Tag.ColorVariant, want)
		}
	}
}

func TestBuildEntries_InjectedColorer(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	plans := []domain.Plan{
		{ID: "p1", Title: "Math", Tasks: []domain.Task{dayTask("t1", start, 5)}},
	}

	entries := BuildEntries(plans, func(index int) string { return "custom" })
	if entries[0].Tag.ColorVariant != "custom" {
		t.Errorf("variant = %q, want %q", entries[0].Tag.ColorVariant, "custom")
	}
}

func TestBuildEntries_SortDescendingByStart(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	plans := []domain.Plan{
		{
			ID:    "p1",
			Title: "Math",
			Tasks: []domain.Task{
				dayTask("old", base, 10),
				dayTask("new", base.AddDate(0, 0, 5), 10),
				dayTask("mid", base.AddDate(0, 0, 2), 10),
			},
		},
	}

	entries := BuildEntries(plans, nil)

	got := []string{entries[0].TaskID, entries[1].TaskID, entries[2].TaskID}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q (full order %v)", i, got[i], want[i], got)
		}
	}
}

func TestBuildEntries_UnresolvableDatesSortLast(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	plans := []domain.Plan{
		{
			ID:    "p1",
			Title: "Math",
			Tasks: []domain.Task{
				{ID: "blank", TrackedMinutes: 10},
				dayTask("dated", base, 10),
			},
		},
	}

	entries := BuildEntries(plans, nil)
	if entries[0].TaskID != "dated" || entries[1].TaskID != "blank" {
		t.Errorf("order = [%s %s], want [dated blank]", entries[0].TaskID, entries[1].TaskID)
	}
	if entries[1].ReferenceDate != nil {
		t.Errorf("blank entry reference date = %v, want nil", entries[1].ReferenceDate)
	}
}

func TestBuildEntries_ReferenceDatePrefersCompletedAt(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	completed := start.AddDate(0, 0, 3)

	plans := []domain.Plan{
		{ID: "p1", Title: "Math", Tasks: []domain.Task{completedTask("t1", start, completed, 30)}},
	}

	entries := BuildEntries(plans, nil)
	if entries[0].ReferenceDate == nil || !entries[0].ReferenceDate.Equal(completed) {
		t.Errorf("ReferenceDate = %v, want %v", entries[0].ReferenceDate, completed)
	}
	if entries[0].FinishDate == nil || !entries[0].FinishDate.Equal(completed) {
		t.Errorf("FinishDate = %v, want %v", entries[0].FinishDate, completed)
	}
	if entries[0].StartDate == nil || !entries[0].StartDate.Equal(start) {
		t.Errorf("StartDate = %v, want %v", entries[0].StartDate, start)
	}
}

func TestBuildEntries_DoesNotMutateInput(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	plans := []domain.Plan{
		{ID: "p1", Title: "Math", Tasks: []domain.Task{dayTask("t1", start, 5)}},
	}

	entries := BuildEntries(plans, nil)
	entries[0].Tag.Label = "changed"
	if plans[0].Title != "Math" {
		t.Errorf("plan title mutated to %q", plans[0].Title)
	}
}
