package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/infra/reportcache"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/metrics"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/tracing"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/progress"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/tracker"
)

// ReportHandler exposes the progress analytics endpoints. Every report is
// computed from a snapshot of the plan collection at an evaluation time
// that callers can override with ?at for reproducible reads.
type ReportHandler struct {
	tracker         *tracker.Tracker
	ranges          progress.Ranges
	loc             *time.Location
	cache           *reportcache.Cache
	recorder        domain.ProgressSnapshotRecorder
	progressMetrics *metrics.ProgressMetrics
}

func NewReportHandler(
	trk *tracker.Tracker,
	loc *time.Location,
	cache *reportcache.Cache,
	recorder domain.ProgressSnapshotRecorder,
	progressMetrics *metrics.ProgressMetrics,
) *ReportHandler {
	return &ReportHandler{
		tracker:         trk,
		ranges:          progress.NewRanges(loc),
		loc:             loc,
		cache:           cache,
		recorder:        recorder,
		progressMetrics: progressMetrics,
	}
}

// evaluationTime resolves the report's "now": the ?at query parameter
// when present, wall clock otherwise.
func (h *ReportHandler) evaluationTime(c *gin.Context) (time.Time, bool) {
	atStr := c.Query("at")
	if atStr == "" {
		return time.Now(), true
	}

	parsed, err := time.Parse(time.RFC3339, atStr)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid at time format, expected RFC3339")
		return time.Time{}, false
	}

	slog.InfoContext(c.Request.Context(), "using virtual time",
		slog.Time("virtual_now", parsed),
	)
	return parsed, true
}

func (h *ReportHandler) HandleEntries(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	entries := progress.BuildEntries(h.tracker.Snapshot(), nil)

	h.recordBuilt(c, "entries", time.Since(start))
	slog.DebugContext(ctx, "progress entries built",
		slog.Int("entry_count", len(entries)),
	)

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *ReportHandler) HandleSegments(c *gin.Context) {
	now, ok := h.evaluationTime(c)
	if !ok {
		return
	}

	rangeName := c.DefaultQuery("range", "day")
	var within progress.RangePredicate
	switch rangeName {
	case "day":
		within = h.ranges.SameDay(now)
	case "week":
		within = h.ranges.CurrentWeek(now)
	default:
		respondError(c, http.StatusBadRequest, "invalid range, expected day or week")
		return
	}

	ctx, span := tracing.StartReportBuildSpan(c.Request.Context(), "segments", now)
	defer span.End()
	start := time.Now()

	plans := h.tracker.Snapshot()

	var report domain.SegmentReport
	key, cached := h.lookupCached(ctx, "segments", plans, now, "range="+rangeName, &report)
	if !cached {
		entries := progress.BuildEntries(plans, nil)
		report = progress.BuildSegments(entries, within)
		h.storeCached(ctx, key, report)
	}

	h.recordBuilt(c, "segments", time.Since(start))
	tracing.RecordReportBuildResult(span, len(report.Segments), cached, nil)

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) HandleTrend(c *gin.Context) {
	now, ok := h.evaluationTime(c)
	if !ok {
		return
	}

	usePlaceholder := c.DefaultQuery("placeholder", "true") != "false"

	ctx, span := tracing.StartReportBuildSpan(c.Request.Context(), "trend", now)
	defer span.End()
	start := time.Now()

	plans := h.tracker.Snapshot()

	params := "placeholder=false"
	if usePlaceholder {
		params = "placeholder=true"
	}

	var report domain.TrendReport
	key, cached := h.lookupCached(ctx, "trend", plans, now, params, &report)
	if !cached {
		entries := progress.BuildEntries(plans, nil)
		if usePlaceholder {
			report = progress.BuildTrendOrPlaceholder(entries, now, h.loc)
		} else {
			report = progress.BuildTrend(entries, h.loc)
		}
		h.storeCached(ctx, key, report)
	}

	h.recordBuilt(c, "trend", time.Since(start))
	tracing.RecordReportBuildResult(span, len(report.Series), cached, nil)

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) HandleWeeks(c *gin.Context) {
	now, ok := h.evaluationTime(c)
	if !ok {
		return
	}

	ctx, span := tracing.StartReportBuildSpan(c.Request.Context(), "weeks", now)
	defer span.End()
	start := time.Now()

	plans := h.tracker.Snapshot()
	entries := progress.BuildEntries(plans, nil)
	comparison := progress.CompareWeeks(entries, now, h.ranges)

	h.recordBuilt(c, "weeks", time.Since(start))
	tracing.RecordReportBuildResult(span, len(entries), false, nil)

	c.JSON(http.StatusOK, comparison)

	// Snapshot recording is best-effort and must not affect the response.
	if h.recorder != nil {
		record := domain.WeekSnapshotRecord{
			RecordedAt:          time.Now(),
			WeekStart:           h.ranges.WeekStart(now),
			CurrentWeekMinutes:  comparison.CurrentWeekMinutes,
			PreviousWeekMinutes: comparison.PreviousWeekMinutes,
			Diff:                comparison.Diff,
			PercentChange:       comparison.PercentChange,
			PlanCount:           len(plans),
			EntryCount:          len(entries),
		}
		if err := h.recorder.RecordWeekSnapshot(ctx, record); err != nil {
			slog.WarnContext(ctx, "failed to record week snapshot",
				slog.String("error", err.Error()),
			)
		}
	}
}

// lookupCached returns the cache key for the report and whether a cached
// copy was loaded into dest. Cache errors degrade to a recompute.
func (h *ReportHandler) lookupCached(ctx context.Context, kind string, plans []domain.Plan, now time.Time, params string, dest any) (string, bool) {
	if h.cache == nil {
		return "", false
	}

	fingerprint, err := reportcache.Fingerprint(plans, now, params)
	if err != nil {
		slog.WarnContext(ctx, "failed to fingerprint report input",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	key := reportcache.Key(kind, fingerprint)

	spanCtx, span := tracing.StartCacheOperationSpan(ctx, "get", key)
	err = h.cache.Get(spanCtx, key, dest)
	span.End()

	hit := err == nil
	if h.progressMetrics != nil {
		h.progressMetrics.RecordCacheLookup(ctx, kind, hit)
	}

	if err != nil && !errors.Is(err, reportcache.ErrCacheMiss) {
		slog.WarnContext(ctx, "report cache lookup failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}

	return key, hit
}

func (h *ReportHandler) storeCached(ctx context.Context, key string, value any) {
	if h.cache == nil || key == "" {
		return
	}

	spanCtx, span := tracing.StartCacheOperationSpan(ctx, "set", key)
	defer span.End()

	if err := h.cache.Set(spanCtx, key, value); err != nil {
		slog.WarnContext(ctx, "report cache store failed",
			slog.String("error", err.Error()),
		)
	}
}

func (h *ReportHandler) recordBuilt(c *gin.Context, kind string, duration time.Duration) {
	if h.progressMetrics != nil {
		h.progressMetrics.RecordReportBuilt(c.Request.Context(), kind, duration)
	}
}
