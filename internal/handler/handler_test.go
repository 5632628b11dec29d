package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/config"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/normalize"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/tracker"
)

var handlerTestNow = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

type memStore struct {
	mu     sync.Mutex
	nextID int
	plans  map[string]domain.RawRecord
	tasks  map[string]domain.RawRecord
}

func newMemStore() *memStore {
	return &memStore{
		plans: make(map[string]domain.RawRecord),
		tasks: make(map[string]domain.RawRecord),
	}
}

func (s *memStore) genID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *memStore) CreatePlan(_ context.Context, payload domain.RawRecord) (domain.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := domain.RawRecord{
		"id":        s.genID("plan"),
		"status":    "not-started",
		"createdAt": handlerTestNow.Format(time.RFC3339),
	}
	for k, v := range payload {
		rec[k] = v
	}
	s.plans[rec["id"].(string)] = rec
	return rec, nil
}

func (s *memStore) UpdatePlan(_ context.Context, planID string, patch domain.RawRecord) (domain.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.plans[planID]
	if !ok {
		rec = domain.RawRecord{"id": planID, "createdAt": handlerTestNow.Format(time.RFC3339)}
		s.plans[planID] = rec
	}
	for k, v := range patch {
		rec[k] = v
	}
	return rec, nil
}

func (s *memStore) AddTask(_ context.Context, planID string, payload domain.RawRecord) (domain.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := domain.RawRecord{
		"id":             s.genID("task"),
		"status":         "not-started",
		"createdAt":      handlerTestNow.Format(time.RFC3339),
		"trackedMinutes": float64(0),
	}
	for _, k := range []string{"title", "description", "dueDate"} {
		if v, ok := payload[k]; ok {
			rec[k] = v
		}
	}
	s.tasks[rec["id"].(string)] = rec
	return rec, nil
}

func (s *memStore) UpdateTask(_ context.Context, planID, taskID string, patch domain.RawRecord) (domain.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tasks[taskID]
	if !ok {
		rec = domain.RawRecord{"id": taskID, "createdAt": handlerTestNow.Format(time.RFC3339)}
		s.tasks[taskID] = rec
	}
	for k, v := range patch {
		if v == nil {
			delete(rec, k)
			continue
		}
		rec[k] = v
	}
	return rec, nil
}

func (s *memStore) ListPlans(_ context.Context, _ domain.PageParams) ([]domain.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.RawRecord, 0, len(s.plans))
	for _, rec := range s.plans {
		out = append(out, rec)
	}
	return out, nil
}

type recordedSnapshot struct {
	mu      sync.Mutex
	records []domain.WeekSnapshotRecord
}

func (r *recordedSnapshot) RecordWeekSnapshot(_ context.Context, record domain.WeekSnapshotRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *recordedSnapshot) Flush(_ context.Context) error { return nil }
func (r *recordedSnapshot) Close() error                  { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *tracker.Tracker, *recordedSnapshot) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	norm := normalize.NewWithClock(
		func() time.Time { return handlerTestNow },
		func() string { return "generated" },
	)
	trk := tracker.New(store, norm, tracker.WithClock(func() time.Time { return handlerTestNow }))

	recorder := &recordedSnapshot{}

	planHandler := NewPlanHandler(trk, config.PageConfig{Page: 1, PerPage: 50}, nil)
	reportHandler := NewReportHandler(trk, time.UTC, nil, recorder, nil)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		v1.POST("/plans", planHandler.HandleCreatePlan)
		v1.GET("/plans", planHandler.HandleListPlans)
		v1.POST("/plans/:planId/status", planHandler.HandleUpdatePlanStatus)
		v1.POST("/plans/:planId/tasks", planHandler.HandleAddTask)
		v1.PATCH("/plans/:planId/tasks/:taskId", planHandler.HandleUpdateTask)
		v1.POST("/plans/:planId/tasks/:taskId/status", planHandler.HandleUpdateTaskStatus)

		v1.GET("/reports/entries", reportHandler.HandleEntries)
		v1.GET("/reports/segments", reportHandler.HandleSegments)
		v1.GET("/reports/trend", reportHandler.HandleTrend)
		v1.GET("/reports/weeks", reportHandler.HandleWeeks)
	}
	return r, trk, recorder
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestHandleCreatePlan(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/plans", gin.H{
		"title":    "Math",
		"category": "school",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}

	var plan domain.Plan
	decodeBody(t, w, &plan)
	if plan.ID == "" || plan.Title != "Math" {
		t.Errorf("plan = %+v, want assigned id and title Math", plan)
	}
}

func TestHandleUpdatePlanStatus_InvalidStatus(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/plans/plan-x/status", gin.H{
		"status": "paused",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleAddTask_UnknownPlan(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/plans/missing/tasks", gin.H{
		"title": "Chapter 1",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (body: %s)", w.Code, w.Body.String())
	}
}

func TestHandleUpdateTask_ExplicitNullClearsCompletion(t *testing.T) {
	r, _, _ := newTestRouter(t)

	var plan domain.Plan
	decodeBody(t, doJSON(t, r, http.MethodPost, "/api/v1/plans", gin.H{"title": "Math"}), &plan)

	var task domain.Task
	decodeBody(t, doJSON(t, r, http.MethodPost, "/api/v1/plans/"+plan.ID+"/tasks", gin.H{
		"title":  "Chapter 1",
		"status": "completed",
	}), &task)
	if task.CompletedAt == nil {
		t.Fatal("precondition: task should have a completion timestamp")
	}

	w := doJSON(t, r, http.MethodPatch, "/api/v1/plans/"+plan.ID+"/tasks/"+task.ID, map[string]any{
		"completedAt": nil,
		"status":      "in-progress",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var updated domain.Task
	decodeBody(t, w, &updated)
	if updated.CompletedAt != nil {
		t.Errorf("completedAt = %v, want cleared", updated.CompletedAt)
	}
	if updated.Status != domain.StatusInProgress {
		t.Errorf("status = %q, want in-progress", updated.Status)
	}
}

func TestHandleUpdateTaskStatus_TransitionShape(t *testing.T) {
	r, _, _ := newTestRouter(t)

	var plan domain.Plan
	decodeBody(t, doJSON(t, r, http.MethodPost, "/api/v1/plans", gin.H{"title": "Math"}), &plan)

	var task domain.Task
	decodeBody(t, doJSON(t, r, http.MethodPost, "/api/v1/plans/"+plan.ID+"/tasks", gin.H{
		"title": "Chapter 1",
	}), &task)

	w := doJSON(t, r, http.MethodPost, "/api/v1/plans/"+plan.ID+"/tasks/"+task.ID+"/status", gin.H{
		"status": "completed",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var resp struct {
		Previous domain.Task `json:"previous"`
		Task     domain.Task `json:"task"`
	}
	decodeBody(t, w, &resp)
	if resp.Previous.Status != domain.StatusNotStarted {
		t.Errorf("previous status = %q, want not-started", resp.Previous.Status)
	}
	if resp.Task.Status != domain.StatusCompleted || resp.Task.CompletedAt == nil {
		t.Errorf("task = %+v, want completed with timestamp", resp.Task)
	}
}

func TestHandleSegments_DayRange(t *testing.T) {
	r, _, _ := newTestRouter(t)

	var plan domain.Plan
	decodeBody(t, doJSON(t, r, http.MethodPost, "/api/v1/plans", gin.H{"title": "Math"}), &plan)

	for _, minutes := range []int{60, 90} {
		w := doJSON(t, r, http.MethodPost, "/api/v1/plans/"+plan.ID+"/tasks", gin.H{
			"title":          "session",
			"status":         "completed",
			"trackedMinutes": minutes,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("task create status = %d (body: %s)", w.Code, w.Body.String())
		}
	}

	at := handlerTestNow.Format(time.RFC3339)
	w := doJSON(t, r, http.MethodGet, "/api/v1/reports/segments?range=day&at="+at, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var report domain.SegmentReport
	decodeBody(t, w, &report)
	if len(report.Segments) != 1 {
		t.Fatalf("segments = %+v, want one Math segment", report.Segments)
	}
	if report.Segments[0].Minutes != 150 || report.Segments[0].Hours != 2.5 {
		t.Errorf("segment = %+v, want minutes=150 hours=2.5", report.Segments[0])
	}
	if report.TotalMinutes != 150 {
		t.Errorf("TotalMinutes = %d, want 150", report.TotalMinutes)
	}
}

func TestHandleSegments_InvalidParams(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "invalid range", path: "/api/v1/reports/segments?range=month"},
		{name: "invalid at", path: "/api/v1/reports/segments?at=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, tt.path, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestHandleTrend_PlaceholderToggle(t *testing.T) {
	r, _, _ := newTestRouter(t)

	at := handlerTestNow.Format(time.RFC3339)

	w := doJSON(t, r, http.MethodGet, "/api/v1/reports/trend?at="+at, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var withPlaceholder domain.TrendReport
	decodeBody(t, w, &withPlaceholder)
	if len(withPlaceholder.Series) == 0 {
		t.Error("placeholder trend empty, want demo series")
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/reports/trend?placeholder=false&at="+at, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var plain domain.TrendReport
	decodeBody(t, w, &plain)
	if len(plain.Series) != 0 {
		t.Errorf("series = %+v, want empty without placeholder", plain.Series)
	}
}

func TestHandleWeeks_RecordsSnapshot(t *testing.T) {
	r, _, recorder := newTestRouter(t)

	var plan domain.Plan
	decodeBody(t, doJSON(t, r, http.MethodPost, "/api/v1/plans", gin.H{"title": "Math"}), &plan)
	doJSON(t, r, http.MethodPost, "/api/v1/plans/"+plan.ID+"/tasks", gin.H{
		"title":          "session",
		"status":         "completed",
		"trackedMinutes": 45,
	})

	at := handlerTestNow.Format(time.RFC3339)
	w := doJSON(t, r, http.MethodGet, "/api/v1/reports/weeks?at="+at, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var comparison domain.WeekComparison
	decodeBody(t, w, &comparison)
	if comparison.CurrentWeekMinutes != 45 {
		t.Errorf("CurrentWeekMinutes = %d, want 45", comparison.CurrentWeekMinutes)
	}
	if comparison.PercentChange != 100 {
		t.Errorf("PercentChange = %v, want 100", comparison.PercentChange)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.records) != 1 {
		t.Fatalf("recorded snapshots = %d, want 1", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.CurrentWeekMinutes != 45 || rec.PlanCount != 1 {
		t.Errorf("snapshot = %+v, want current=45 plans=1", rec)
	}
	wantWeekStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if !rec.WeekStart.Equal(wantWeekStart) {
		t.Errorf("WeekStart = %v, want %v", rec.WeekStart, wantWeekStart)
	}
}

func TestHandleListPlans_Refresh(t *testing.T) {
	r, trk, _ := newTestRouter(t)

	var plan domain.Plan
	decodeBody(t, doJSON(t, r, http.MethodPost, "/api/v1/plans", gin.H{"title": "Math"}), &plan)

	w := doJSON(t, r, http.MethodGet, "/api/v1/plans?refresh=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Plans []domain.Plan `json:"plans"`
		Count int           `json:"count"`
	}
	decodeBody(t, w, &resp)
	if resp.Count != 1 || len(resp.Plans) != 1 {
		t.Errorf("resp = %+v, want one plan after refresh", resp)
	}

	if len(trk.Snapshot()) != 1 {
		t.Error("tracker snapshot out of sync after refresh")
	}
}
