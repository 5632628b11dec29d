package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const progressMeterName = "progress.service"

type ProgressMetrics struct {
	reportsBuilt        metric.Int64Counter
	reportBuildDuration metric.Float64Histogram
	planMutations       metric.Int64Counter
	cacheLookups        metric.Int64Counter
}

func NewProgressMetrics() (*ProgressMetrics, error) {
	meter := otel.Meter(progressMeterName)

	reportsBuilt, err := meter.Int64Counter(
		"progress_reports_built_total",
		metric.WithDescription("Total number of progress reports built"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	reportBuildDuration, err := meter.Float64Histogram(
		"progress_report_build_duration_seconds",
		metric.WithDescription("Time spent building progress reports"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5,
		),
	)
	if err != nil {
		return nil, err
	}

	planMutations, err := meter.Int64Counter(
		"plan_mutations_total",
		metric.WithDescription("Total number of plan and task mutations applied"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"report_cache_lookups_total",
		metric.WithDescription("Report cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProgressMetrics{
		reportsBuilt:        reportsBuilt,
		reportBuildDuration: reportBuildDuration,
		planMutations:       planMutations,
		cacheLookups:        cacheLookups,
	}, nil
}

func (m *ProgressMetrics) RecordReportBuilt(ctx context.Context, kind string, duration time.Duration) {
	m.reportsBuilt.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
	m.reportBuildDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

func (m *ProgressMetrics) RecordPlanMutation(ctx context.Context, operation, outcome string) {
	m.planMutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func (m *ProgressMetrics) RecordCacheLookup(ctx context.Context, kind string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}
