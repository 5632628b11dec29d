// Package storestub is an in-memory task store used for local
// development and load testing, speaking the same wire protocol as the
// real store.
package storestub

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type record = map[string]any

// PlanStorage keeps plans and their tasks in memory. Records stay raw
// maps so the stub echoes fields it does not understand, like the real
// store does.
type PlanStorage struct {
	mu    sync.RWMutex
	order []string
	plans map[string]record
	tasks map[string][]record
}

func NewPlanStorage() *PlanStorage {
	return &PlanStorage{
		plans: make(map[string]record),
		tasks: make(map[string][]record),
	}
}

func (s *PlanStorage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.plans = make(map[string]record)
	s.tasks = make(map[string][]record)
}

func (s *PlanStorage) CreatePlan(payload record) record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{
		"id":        uuid.NewString(),
		"status":    "not-started",
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range payload {
		rec[k] = v
	}

	id := rec["id"].(string)
	s.plans[id] = rec
	s.order = append(s.order, id)
	return cloneRecord(rec)
}

func (s *PlanStorage) UpdatePlan(planID string, patch record) (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.plans[planID]
	if !ok {
		return nil, false
	}
	applyPatch(rec, patch)
	return cloneRecord(rec), true
}

func (s *PlanStorage) AddTask(planID string, payload record) (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[planID]; !ok {
		return nil, false
	}

	rec := record{
		"id":             uuid.NewString(),
		"status":         "not-started",
		"createdAt":      time.Now().UTC().Format(time.RFC3339),
		"trackedMinutes": 0,
	}
	// The create endpoint accepts only these fields; everything else
	// arrives via a follow-up update.
	for _, k := range []string{"title", "description", "dueDate"} {
		if v, ok := payload[k]; ok {
			rec[k] = v
		}
	}

	s.tasks[planID] = append(s.tasks[planID], rec)
	return cloneRecord(rec), true
}

func (s *PlanStorage) UpdateTask(planID, taskID string, patch record) (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.tasks[planID] {
		if rec["id"] == taskID {
			applyPatch(rec, patch)
			return cloneRecord(rec), true
		}
	}
	return nil, false
}

// ListPlans returns plans in creation order with their tasks embedded,
// honoring 1-based pagination. perPage <= 0 means no limit.
func (s *PlanStorage) ListPlans(page, perPage int) []record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order
	if perPage > 0 {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * perPage
		if start >= len(ids) {
			return []record{}
		}
		end := start + perPage
		if end > len(ids) {
			end = len(ids)
		}
		ids = ids[start:end]
	}

	out := make([]record, 0, len(ids))
	for _, id := range ids {
		rec := cloneRecord(s.plans[id])
		tasks := make([]record, 0, len(s.tasks[id]))
		for _, task := range s.tasks[id] {
			tasks = append(tasks, cloneRecord(task))
		}
		rec["tasks"] = tasks
		out = append(out, rec)
	}
	return out
}

// applyPatch merges a partial update; explicit nulls delete the field.
func applyPatch(rec, patch record) {
	for k, v := range patch {
		if v == nil {
			delete(rec, k)
			continue
		}
		rec[k] = v
	}
}

func cloneRecord(rec record) record {
	out := make(record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
