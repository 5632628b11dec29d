package domain

import "time"

// Plan is a long-term goal owning an ordered sequence of tasks.
type Plan struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Tasks       []Task     `json:"tasks"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RollUpDueDate re-derives the plan due date as the latest task due date.
// When no task carries a due date the prior value is retained; the roll-up
// never clears an existing due date.
func (p *Plan) RollUpDueDate() {
	var latest time.Time
	for i := range p.Tasks {
		if due := p.Tasks[i].DueDate; !due.IsZero() && due.After(latest) {
			latest = due
		}
	}
	if latest.IsZero() {
		return
	}
	due := latest
	p.DueDate = &due
}

// TaskIndex returns the position of the task with the given id, or -1.
func (p *Plan) TaskIndex(taskID string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the plan and its tasks.
func (p Plan) Clone() Plan {
	c := p
	if p.DueDate != nil {
		due := *p.DueDate
		c.DueDate = &due
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	if p.Tasks != nil {
		c.Tasks = make([]Task, len(p.Tasks))
		for i := range p.Tasks {
			c.Tasks[i] = p.Tasks[i].Clone()
		}
	}
	return c
}

// ClonePlans deep-copies a plan collection snapshot.
func ClonePlans(plans []Plan) []Plan {
	out := make([]Plan, len(plans))
	for i := range plans {
		out[i] = plans[i].Clone()
	}
	return out
}
