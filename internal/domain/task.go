package domain

import "time"

// Task is a short-term unit of work owned by exactly one Plan.
//
// Canonical tasks always carry CreatedAt, StartAt and DueDate; the normalizer
// fills them via the fallback chain (startAt defaults to createdAt, dueDate
// defaults to startAt then createdAt). CompletedAt is nil until a mutation
// moves the task into StatusCompleted.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	StartAt        time.Time  `json:"start_at"`
	DueDate        time.Time  `json:"due_date"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	TrackedMinutes int        `json:"tracked_minutes"`
}

// ReferenceDate resolves the instant analytics anchors this task to:
// completedAt, then startAt, then createdAt. Nil when none is usable.
func (t *Task) ReferenceDate() *time.Time {
	if t.CompletedAt != nil && !t.CompletedAt.IsZero() {
		return t.CompletedAt
	}
	if !t.StartAt.IsZero() {
		ts := t.StartAt
		return &ts
	}
	if !t.CreatedAt.IsZero() {
		ts := t.CreatedAt
		return &ts
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return c
}
