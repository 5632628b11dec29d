// Package logging provides the structured slog setup shared by every
// component: a JSON handler enriched with request and trace identity.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Environment selects the log output profile.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module tags log lines with the emitting component.
type Module string

// ServiceInfo identifies the running service in logs and telemetry.
type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type requestIDKey struct{}

// WithRequestID stores the request ID for downstream log lines and
// outbound calls.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the stored request ID, or empty.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

const maxRequestIDLength = 128

// ValidateAndExtractRequestID returns the given ID when usable and
// generates a fresh one otherwise, so outbound requests always carry one.
func ValidateAndExtractRequestID(requestID string) string {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" || len(requestID) > maxRequestIDLength {
		return uuid.NewString()
	}
	return requestID
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the service logger: JSON lines with service identity,
// request ID and trace correlation pulled from the context.
func NewLogger(info ServiceInfo, env Environment, level slog.Level, module Module) *slog.Logger {
	base := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	handler := &contextHandler{inner: base}

	logger := slog.New(handler).With(
		slog.String("service", info.Name),
		slog.String("version", info.Version),
		slog.String("env", string(env)),
	)
	if module != "" {
		logger = logger.With(slog.String("module", string(module)))
	}
	if info.Revision != "" {
		logger = logger.With(slog.String("revision", info.Revision))
	}
	return logger
}

// contextHandler appends request and trace identity from the context to
// every record.
type contextHandler struct {
	inner slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		record.AddAttrs(slog.String("request_id", requestID))
	}

	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", span.TraceID().String()),
			slog.String("span_id", span.SpanID().String()),
		)
	}

	return h.inner.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{inner: h.inner.WithGroup(name)}
}
