package tracker

import (
	"time"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

// TaskPatch is a partial task update. A nil field is omitted entirely and
// left untouched server-side; ClearCompletedAt sends an explicit null to
// clear the completion timestamp (absence and null are different intents).
type TaskPatch struct {
	Title            *string
	Description      *string
	Status           *domain.Status
	StartAt          *time.Time
	DueDate          *time.Time
	CompletedAt      *time.Time
	ClearCompletedAt bool
	TrackedMinutes   *int
}

// payload renders the wire patch with only the explicitly present fields.
func (p TaskPatch) payload() domain.RawRecord {
	patch := domain.RawRecord{}
	if p.Title != nil {
		patch["title"] = *p.Title
	}
	if p.Description != nil {
		patch["description"] = *p.Description
	}
	if p.Status != nil {
		patch["status"] = p.Status.String()
	}
	if p.StartAt != nil {
		patch["startAt"] = p.StartAt.Format(time.RFC3339Nano)
	}
	if p.DueDate != nil {
		patch["dueDate"] = p.DueDate.Format(time.RFC3339Nano)
	}
	switch {
	case p.CompletedAt != nil:
		patch["completedAt"] = p.CompletedAt.Format(time.RFC3339Nano)
	case p.ClearCompletedAt:
		patch["completedAt"] = nil
	}
	if p.TrackedMinutes != nil {
		patch["trackedMinutes"] = *p.TrackedMinutes
	}
	return patch
}
