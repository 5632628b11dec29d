package storestub

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	storage *PlanStorage
}

func NewHandler(storage *PlanStorage) *Handler {
	return &Handler{storage: storage}
}

// Register mounts the task store API on the given router.
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/plans", h.HandleCreatePlan)
		v1.GET("/plans", h.HandleListPlans)
		v1.PATCH("/plans/:planId", h.HandleUpdatePlan)
		v1.POST("/plans/:planId/tasks", h.HandleAddTask)
		v1.PATCH("/plans/:planId/tasks/:taskId", h.HandleUpdateTask)
	}
	r.POST("/reset", h.HandleReset)
}

func (h *Handler) HandleReset(c *gin.Context) {
	h.storage.Reset()

	slog.Info("store reset")

	c.JSON(http.StatusOK, gin.H{"status": "reset complete"})
}

func (h *Handler) HandleCreatePlan(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := h.storage.CreatePlan(payload)

	slog.Debug("plan created", slog.Any("id", rec["id"]))

	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) HandleUpdatePlan(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := h.storage.UpdatePlan(c.Param("planId"), patch)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) HandleAddTask(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := h.storage.AddTask(c.Param("planId"), payload)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}

	slog.Debug("task added",
		slog.String("plan_id", c.Param("planId")),
		slog.Any("task_id", rec["id"]),
	)

	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) HandleUpdateTask(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := h.storage.UpdateTask(c.Param("planId"), c.Param("taskId"), patch)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) HandleListPlans(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "0"))

	plans := h.storage.ListPlans(page, perPage)

	slog.Debug("list plans",
		slog.Int("page", page),
		slog.Int("per_page", perPage),
		slog.Int("count", len(plans)),
	)

	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"count": len(plans),
	})
}
