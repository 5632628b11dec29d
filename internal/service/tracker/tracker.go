// Package tracker applies user intents to the plan collection through the
// task store and keeps the in-memory canonical snapshot. It is the only
// writer of that snapshot; every store response is re-normalized before
// merging, so the server stays the source of truth for canonical shape.
package tracker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/normalize"
)

const untitledPlanTitle = "Untitled plan"
const untitledTaskTitle = "Untitled task"

type Tracker struct {
	store domain.TaskStore
	norm  *normalize.Normalizer
	now   func() time.Time

	mu    sync.RWMutex
	plans []domain.Plan
}

type Option func(*Tracker)

// WithClock overrides the clock used for completion stamping.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(store domain.TaskStore, norm *normalize.Normalizer, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		norm:  norm,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Snapshot returns a deep copy of the plan collection. Aggregation always
// reads a snapshot so no mutation can be observed mid-computation.
func (t *Tracker) Snapshot() []domain.Plan {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return domain.ClonePlans(t.plans)
}

// Refresh re-lists plans from the task store and replaces the collection
// with the normalized result.
func (t *Tracker) Refresh(ctx context.Context, page domain.PageParams) error {
	raws, err := t.store.ListPlans(ctx, page)
	if err != nil {
		return domain.NewPersistenceError("list plans", err)
	}

	plans := make([]domain.Plan, 0, len(raws))
	for _, raw := range raws {
		plans = append(plans, t.norm.Plan(raw))
	}

	t.mu.Lock()
	t.plans = plans
	t.mu.Unlock()

	slog.DebugContext(ctx, "plan collection refreshed",
		slog.Int("plan_count", len(plans)),
	)
	return nil
}

// CreatePlanInput carries the user intent for a new plan.
type CreatePlanInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Category    string
	Tags        []string
}

// CreatePlan persists a new plan and prepends the normalized result to the
// collection. No local-only fallback is created when the store call fails.
func (t *Tracker) CreatePlan(ctx context.Context, in CreatePlanInput) (domain.Plan, error) {
	title := in.Title
	if isBlank(title) {
		title = untitledPlanTitle
	}

	payload := domain.RawRecord{
		"title":       title,
		"description": in.Description,
		"category":    in.Category,
	}
	if in.DueDate != nil {
		payload["dueDate"] = in.DueDate.Format(time.RFC3339Nano)
	}
	if len(in.Tags) > 0 {
		payload["tags"] = in.Tags
	}

	raw, err := t.store.CreatePlan(ctx, payload)
	if err != nil {
		return domain.Plan{}, domain.NewPersistenceError("create plan", err)
	}

	plan := t.norm.Plan(raw)

	t.mu.Lock()
	t.plans = append([]domain.Plan{plan}, t.plans...)
	t.mu.Unlock()

	slog.InfoContext(ctx, "plan created",
		slog.String("plan_id", plan.ID),
		slog.String("title", plan.Title),
	)
	return plan.Clone(), nil
}

// UpdatePlanStatus persists a plan status change and merges the normalized
// result back into the collection.
func (t *Tracker) UpdatePlanStatus(ctx context.Context, planID string, status domain.Status) (domain.Plan, error) {
	if planID == "" {
		return domain.Plan{}, domain.NewValidationError(domain.ErrMissingPlanID)
	}

	raw, err := t.store.UpdatePlan(ctx, planID, domain.RawRecord{
		"status": status.String(),
	})
	if err != nil {
		return domain.Plan{}, domain.NewPersistenceError("update plan", err)
	}

	plan := t.norm.Plan(raw)

	t.mu.Lock()
	replaced := false
	for i := range t.plans {
		if t.plans[i].ID == plan.ID {
			// The store's plan endpoint does not echo tasks back; keep ours.
			if len(plan.Tasks) == 0 && len(t.plans[i].Tasks) > 0 {
				plan.Tasks = t.plans[i].Tasks
				plan.RollUpDueDate()
			}
			t.plans[i] = plan
			replaced = true
			break
		}
	}
	if !replaced {
		t.plans = append([]domain.Plan{plan}, t.plans...)
	}
	t.mu.Unlock()

	slog.InfoContext(ctx, "plan status updated",
		slog.String("plan_id", plan.ID),
		slog.String("status", plan.Status.String()),
	)
	return plan.Clone(), nil
}

// AddTaskInput carries the user intent for a new task. Zero values mean
// "use the store's defaults".
type AddTaskInput struct {
	Title          string
	Description    string
	Status         domain.Status
	StartAt        *time.Time
	DueDate        *time.Time
	CompletedAt    *time.Time
	TrackedMinutes int
}

// AddTask creates a task under the given plan. The store's create endpoint
// does not accept all fields, so fields that differ from the server defaults
// are reconciled with a follow-up update call. The fully reconciled task is
// prepended to the plan and the plan due date rolled up again.
func (t *Tracker) AddTask(ctx context.Context, planID string, in AddTaskInput) (domain.Task, error) {
	if planID == "" {
		return domain.Task{}, domain.NewValidationError(domain.ErrMissingPlanID)
	}

	t.mu.RLock()
	planIdx := t.planIndex(planID)
	t.mu.RUnlock()
	if planIdx < 0 {
		return domain.Task{}, domain.ErrPlanNotFound
	}

	title := in.Title
	if isBlank(title) {
		title = untitledTaskTitle
	}

	payload := domain.RawRecord{
		"title":       title,
		"description": in.Description,
	}
	if in.DueDate != nil {
		payload["dueDate"] = in.DueDate.Format(time.RFC3339Nano)
	}

	raw, err := t.store.AddTask(ctx, planID, payload)
	if err != nil {
		return domain.Task{}, domain.NewPersistenceError("add task", err)
	}
	task := t.norm.Task(raw)

	if patch := t.reconcilePatch(task, in); len(patch) > 0 {
		raw, err = t.store.UpdateTask(ctx, planID, task.ID, patch)
		if err != nil {
			return domain.Task{}, domain.NewPersistenceError("reconcile task", err)
		}
		task = t.norm.Task(raw)
	}

	t.mu.Lock()
	if idx := t.planIndex(planID); idx >= 0 {
		t.plans[idx].Tasks = append([]domain.Task{task}, t.plans[idx].Tasks...)
		t.plans[idx].RollUpDueDate()
	}
	t.mu.Unlock()

	slog.InfoContext(ctx, "task added",
		slog.String("plan_id", planID),
		slog.String("task_id", task.ID),
		slog.String("status", task.Status.String()),
	)
	return task.Clone(), nil
}

// reconcilePatch computes the follow-up update needed after a create: only
// caller-supplied fields that differ from the created record are sent.
func (t *Tracker) reconcilePatch(created domain.Task, in AddTaskInput) domain.RawRecord {
	patch := domain.RawRecord{}

	status := in.Status
	if status.Valid() && status != created.Status {
		patch["status"] = status.String()
	}
	if in.StartAt != nil && !in.StartAt.Equal(created.StartAt) {
		patch["startAt"] = in.StartAt.Format(time.RFC3339Nano)
	}
	if in.TrackedMinutes > 0 && in.TrackedMinutes != created.TrackedMinutes {
		patch["trackedMinutes"] = in.TrackedMinutes
	}

	completedAt := in.CompletedAt
	if status.IsCompleted() && completedAt == nil {
		now := t.now()
		completedAt = &now
	}
	if completedAt != nil && (created.CompletedAt == nil || !completedAt.Equal(*created.CompletedAt)) {
		patch["completedAt"] = completedAt.Format(time.RFC3339Nano)
	}

	return patch
}

// UpdateTask applies a partial update. Only fields explicitly present in the
// patch are sent; a field set to explicit null clears server-side state. An
// empty patch skips the network call and returns the cached task.
func (t *Tracker) UpdateTask(ctx context.Context, planID, taskID string, patch TaskPatch) (domain.Task, error) {
	if planID == "" {
		return domain.Task{}, domain.NewValidationError(domain.ErrMissingPlanID)
	}
	if taskID == "" {
		return domain.Task{}, domain.NewValidationError(domain.ErrMissingTaskID)
	}

	cached, err := t.cachedTask(planID, taskID)
	if err != nil {
		return domain.Task{}, err
	}

	payload := patch.payload()
	if len(payload) == 0 {
		return cached, nil
	}

	raw, err := t.store.UpdateTask(ctx, planID, taskID, payload)
	if err != nil {
		return domain.Task{}, domain.NewPersistenceError("update task", err)
	}
	task := t.norm.Task(raw)

	t.mu.Lock()
	if idx := t.planIndex(planID); idx >= 0 {
		if taskIdx := t.plans[idx].TaskIndex(taskID); taskIdx >= 0 {
			t.plans[idx].Tasks[taskIdx] = task
		}
		t.plans[idx].RollUpDueDate()
	}
	t.mu.Unlock()

	slog.DebugContext(ctx, "task updated",
		slog.String("plan_id", planID),
		slog.String("task_id", taskID),
	)
	return task.Clone(), nil
}

// TaskTransition carries the task before and after a status change, for
// callers reacting to the transition itself.
type TaskTransition struct {
	Previous domain.Task
	Next     domain.Task
}

// UpdateTaskStatus changes a task's status, stamping completedAt with "now"
// when the target state is completed and clearing it otherwise. Side effects
// key on the target state only; transitions are unrestricted.
func (t *Tracker) UpdateTaskStatus(ctx context.Context, planID, taskID string, status domain.Status) (TaskTransition, error) {
	if planID == "" {
		return TaskTransition{}, domain.NewValidationError(domain.ErrMissingPlanID)
	}
	if taskID == "" {
		return TaskTransition{}, domain.NewValidationError(domain.ErrMissingTaskID)
	}

	previous, err := t.cachedTask(planID, taskID)
	if err != nil {
		return TaskTransition{}, err
	}

	patch := TaskPatch{Status: &status}
	if status.IsCompleted() {
		now := t.now()
		patch.CompletedAt = &now
	} else {
		patch.ClearCompletedAt = true
	}

	next, err := t.UpdateTask(ctx, planID, taskID, patch)
	if err != nil {
		return TaskTransition{}, err
	}

	return TaskTransition{Previous: previous, Next: next}, nil
}

// cachedTask reads a task from the collection. Callers under no lock.
func (t *Tracker) cachedTask(planID, taskID string) (domain.Task, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := t.planIndex(planID)
	if idx < 0 {
		return domain.Task{}, domain.ErrPlanNotFound
	}
	taskIdx := t.plans[idx].TaskIndex(taskID)
	if taskIdx < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return t.plans[idx].Tasks[taskIdx].Clone(), nil
}

// planIndex must be called with t.mu held.
func (t *Tracker) planIndex(planID string) int {
	for i := range t.plans {
		if t.plans[i].ID == planID {
			return i
		}
	}
	return -1
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
