// Package tracing holds the spans emitted around report building and
// outbound calls, plus trace context propagation for HTTP requests.
package tracing

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const progressTracerName = "github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/progress"

func ProgressTracer() trace.Tracer {
	return otel.Tracer(progressTracerName)
}

// InjectToHTTPRequest propagates the current trace context on an
// outbound request.
func InjectToHTTPRequest(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// ExtractFromHTTPRequest restores the trace context from an inbound
// request.
func ExtractFromHTTPRequest(req *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
}

func StartReportBuildSpan(ctx context.Context, kind string, at time.Time) (context.Context, trace.Span) {
	return ProgressTracer().Start(ctx, "progress.report_build",
		trace.WithAttributes(
			attribute.String("report.kind", kind),
			attribute.String("report.at", at.Format(time.RFC3339)),
		),
	)
}

func StartExternalAPISpan(ctx context.Context, operation, url string) (context.Context, trace.Span) {
	return ProgressTracer().Start(ctx, "progress.external_api."+operation,
		trace.WithAttributes(
			attribute.String("url", url),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartCacheOperationSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return ProgressTracer().Start(ctx, "progress.cache."+operation,
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
			attribute.String("db.key", key),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordReportBuildResult(span trace.Span, entryCount int, cacheHit bool, err error) {
	span.SetAttributes(
		attribute.Int("report.entry_count", entryCount),
		attribute.Bool("report.cache_hit", cacheHit),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
