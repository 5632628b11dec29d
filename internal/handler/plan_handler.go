package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/config"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/metrics"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/tracker"
)

// PlanHandler exposes the plan and task mutation endpoints.
type PlanHandler struct {
	tracker         *tracker.Tracker
	page            config.PageConfig
	progressMetrics *metrics.ProgressMetrics
}

func NewPlanHandler(trk *tracker.Tracker, page config.PageConfig, progressMetrics *metrics.ProgressMetrics) *PlanHandler {
	return &PlanHandler{
		tracker:         trk,
		page:            page,
		progressMetrics: progressMetrics,
	}
}

type createPlanRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
}

func (h *PlanHandler) HandleCreatePlan(c *gin.Context) {
	ctx := c.Request.Context()

	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.tracker.CreatePlan(ctx, tracker.CreatePlanInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		h.recordMutation(c, "create_plan", "error")
		respondDomainError(c, err)
		return
	}

	h.recordMutation(c, "create_plan", "ok")
	c.JSON(http.StatusCreated, plan)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *PlanHandler) HandleUpdatePlanStatus(c *gin.Context) {
	ctx := c.Request.Context()

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	status, ok := parseStatusStrict(req.Status)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid status value")
		return
	}

	plan, err := h.tracker.UpdatePlanStatus(ctx, c.Param("planId"), status)
	if err != nil {
		h.recordMutation(c, "update_plan_status", "error")
		respondDomainError(c, err)
		return
	}

	h.recordMutation(c, "update_plan_status", "ok")
	c.JSON(http.StatusOK, plan)
}

type addTaskRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	StartAt        *time.Time `json:"startAt"`
	DueDate        *time.Time `json:"dueDate"`
	CompletedAt    *time.Time `json:"completedAt"`
	TrackedMinutes int        `json:"trackedMinutes"`
}

func (h *PlanHandler) HandleAddTask(c *gin.Context) {
	ctx := c.Request.Context()

	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.tracker.AddTask(ctx, c.Param("planId"), tracker.AddTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.ParseStatus(req.Status),
		StartAt:        req.StartAt,
		DueDate:        req.DueDate,
		CompletedAt:    req.CompletedAt,
		TrackedMinutes: req.TrackedMinutes,
	})
	if err != nil {
		h.recordMutation(c, "add_task", "error")
		respondDomainError(c, err)
		return
	}

	h.recordMutation(c, "add_task", "ok")
	c.JSON(http.StatusCreated, task)
}

func (h *PlanHandler) HandleUpdateTask(c *gin.Context) {
	ctx := c.Request.Context()

	// Raw messages keep the absent / explicit-null distinction that a
	// typed struct would flatten.
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	patch, err := patchFromRaw(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tracker.UpdateTask(ctx, c.Param("planId"), c.Param("taskId"), patch)
	if err != nil {
		h.recordMutation(c, "update_task", "error")
		respondDomainError(c, err)
		return
	}

	h.recordMutation(c, "update_task", "ok")
	c.JSON(http.StatusOK, task)
}

func (h *PlanHandler) HandleUpdateTaskStatus(c *gin.Context) {
	ctx := c.Request.Context()

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	status, ok := parseStatusStrict(req.Status)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid status value")
		return
	}

	transition, err := h.tracker.UpdateTaskStatus(ctx, c.Param("planId"), c.Param("taskId"), status)
	if err != nil {
		h.recordMutation(c, "update_task_status", "error")
		respondDomainError(c, err)
		return
	}

	h.recordMutation(c, "update_task_status", "ok")
	c.JSON(http.StatusOK, gin.H{
		"previous": transition.Previous,
		"task":     transition.Next,
	})
}

func (h *PlanHandler) HandleListPlans(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("refresh") == "true" {
		if err := h.tracker.Refresh(ctx, domain.PageParams{
			Page:    h.page.Page,
			PerPage: h.page.PerPage,
		}); err != nil {
			respondDomainError(c, err)
			return
		}
	}

	plans := h.tracker.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"count": len(plans),
	})
}

func (h *PlanHandler) recordMutation(c *gin.Context, operation, outcome string) {
	if h.progressMetrics != nil {
		h.progressMetrics.RecordPlanMutation(c.Request.Context(), operation, outcome)
	}
}

func patchFromRaw(raw map[string]json.RawMessage) (tracker.TaskPatch, error) {
	var patch tracker.TaskPatch

	if v, ok := raw["title"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return patch, errors.New("title must be a string")
		}
		patch.Title = &s
	}
	if v, ok := raw["description"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return patch, errors.New("description must be a string")
		}
		patch.Description = &s
	}
	if v, ok := raw["status"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return patch, errors.New("status must be a string")
		}
		status, ok := parseStatusStrict(s)
		if !ok {
			return patch, errors.New("invalid status value")
		}
		patch.Status = &status
	}
	if v, ok := raw["startAt"]; ok {
		t, err := parseTimeField(v)
		if err != nil {
			return patch, errors.New("startAt must be an RFC3339 timestamp")
		}
		patch.StartAt = t
	}
	if v, ok := raw["dueDate"]; ok {
		t, err := parseTimeField(v)
		if err != nil {
			return patch, errors.New("dueDate must be an RFC3339 timestamp")
		}
		patch.DueDate = t
	}
	if v, ok := raw["completedAt"]; ok {
		if string(v) == "null" {
			patch.ClearCompletedAt = true
		} else {
			t, err := parseTimeField(v)
			if err != nil {
				return patch, errors.New("completedAt must be an RFC3339 timestamp or null")
			}
			patch.CompletedAt = t
		}
	}
	if v, ok := raw["trackedMinutes"]; ok {
		var minutes int
		if err := json.Unmarshal(v, &minutes); err != nil || minutes < 0 {
			return patch, errors.New("trackedMinutes must be a non-negative integer")
		}
		patch.TrackedMinutes = &minutes
	}

	return patch, nil
}

// parseStatusStrict accepts only known status values, unlike the
// normalizer's lenient fallback.
func parseStatusStrict(s string) (domain.Status, bool) {
	status := domain.Status(strings.ToLower(strings.TrimSpace(s)))
	return status, status.Valid()
}

func parseTimeField(v json.RawMessage) (*time.Time, error) {
	var t time.Time
	if err := json.Unmarshal(v, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondDomainError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var perr *domain.PersistenceError

	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrPlanNotFound), errors.Is(err, domain.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &perr):
		respondError(c, http.StatusBadGateway, perr.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
