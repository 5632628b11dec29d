// Package normalize converts arbitrary plan/task payloads into canonical
// domain records. Normalization never fails: unparsable or missing fields
// degrade to documented defaults so analytics keeps working on partial or
// legacy data.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

var planIDKeys = []string{"id", "_id", "planId", "plan_id"}
var taskIDKeys = []string{"id", "_id", "taskId", "task_id"}

type Normalizer struct {
	now   func() time.Time
	newID func() string
}

func New() *Normalizer {
	return &Normalizer{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// NewWithClock injects the clock and id generator, for deterministic tests.
func NewWithClock(now func() time.Time, newID func() string) *Normalizer {
	return &Normalizer{now: now, newID: newID}
}

// Plan normalizes a raw plan record. Tasks are normalized first, then the
// plan due date is re-derived via the roll-up rule.
func (n *Normalizer) Plan(raw domain.RawRecord) domain.Plan {
	p := domain.Plan{
		ID:          n.recordID(raw, planIDKeys),
		Title:       stringField(raw, "title"),
		Description: stringField(raw, "description"),
		Status:      statusField(raw),
		Category:    stringField(raw, "category"),
		Tags:        tagsField(raw),
	}

	createdAt, ok := instantField(raw, "createdAt", "created_at")
	if !ok {
		createdAt = n.now()
	}
	p.CreatedAt = createdAt

	if due, ok := instantField(raw, "dueDate", "due_date"); ok {
		p.DueDate = &due
	}

	if rawTasks, ok := raw["tasks"].([]any); ok {
		p.Tasks = make([]domain.Task, 0, len(rawTasks))
		for _, rt := range rawTasks {
			if rec, ok := rt.(map[string]any); ok {
				p.Tasks = append(p.Tasks, n.Task(rec))
			}
		}
	}

	p.RollUpDueDate()
	return p
}

// Task normalizes a raw task record, applying the timestamp fallback chain:
// startAt defaults to createdAt, dueDate to startAt then createdAt.
func (n *Normalizer) Task(raw domain.RawRecord) domain.Task {
	t := domain.Task{
		ID:             n.recordID(raw, taskIDKeys),
		Title:          stringField(raw, "title"),
		Description:    stringField(raw, "description"),
		Status:         statusField(raw),
		TrackedMinutes: minutesField(raw),
	}

	createdAt, ok := instantField(raw, "createdAt", "created_at")
	if !ok {
		createdAt = n.now()
	}
	t.CreatedAt = createdAt

	startAt, ok := instantField(raw, "startAt", "start_at")
	if !ok {
		startAt = createdAt
	}
	t.StartAt = startAt

	dueDate, ok := instantField(raw, "dueDate", "due_date")
	if !ok {
		dueDate = startAt
	}
	t.DueDate = dueDate

	if completedAt, ok := instantField(raw, "completedAt", "completed_at"); ok {
		t.CompletedAt = &completedAt
	}

	return t
}

func (n *Normalizer) recordID(raw domain.RawRecord, keys []string) string {
	for _, key := range keys {
		if id := stringField(raw, key); id != "" {
			return id
		}
	}
	return n.newID()
}

func stringField(raw domain.RawRecord, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func statusField(raw domain.RawRecord) domain.Status {
	return domain.ParseStatus(stringField(raw, "status"))
}

func tagsField(raw domain.RawRecord) []string {
	switch v := raw["tags"].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		if len(tags) == 0 {
			return nil
		}
		return tags
	}
	return nil
}

// minutesField coerces tracked minutes to a non-negative integer. Anything
// non-finite or negative degrades to zero.
func minutesField(raw domain.RawRecord) int {
	var v any
	for _, key := range []string{"trackedMinutes", "tracked_minutes", "minutes"} {
		if found, ok := raw[key]; ok {
			v = found
			break
		}
	}

	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case float32:
		f = float64(value)
	case int:
		f = float64(value)
	case int32:
		f = float64(value)
	case int64:
		f = float64(value)
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(math.Round(f))
}

func instantField(raw domain.RawRecord, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if t, ok := parseInstant(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseInstant accepts the shapes the task store and in-memory construction
// produce: time values, ISO-8601 strings and epoch numbers (milliseconds when
// large enough, seconds otherwise). Invalid dates resolve like absent ones.
func parseInstant(v any) (time.Time, bool) {
	switch value := v.(type) {
	case time.Time:
		return value, !value.IsZero()
	case *time.Time:
		if value == nil {
			return time.Time{}, false
		}
		return *value, !value.IsZero()
	case string:
		for _, layout := range instantLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64:
		return epochToTime(int64(value))
	case int64:
		return epochToTime(value)
	case int:
		return epochToTime(int64(value))
	case json.Number:
		n, err := value.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return epochToTime(n)
	}
	return time.Time{}, false
}

func epochToTime(n int64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	// Values past the year 5138 in seconds are treated as milliseconds.
	if n > 1e11 {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}
