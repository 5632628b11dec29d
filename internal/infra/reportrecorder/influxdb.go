// Package reportrecorder writes weekly comparison snapshots to InfluxDB
// for long-term study history. When InfluxDB is not configured the
// recorder degrades to a no-op.
package reportrecorder

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.ProgressSnapshotRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "progress snapshot recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, progress snapshot recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "progress snapshot recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) RecordWeekSnapshot(ctx context.Context, record domain.WeekSnapshotRecord) error {
	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	point := influxdb2.NewPoint(
		"week_comparison",
		map[string]string{
			"week_start": record.WeekStart.UTC().Format(time.RFC3339),
		},
		map[string]any{
			"current_week_minutes":  record.CurrentWeekMinutes,
			"previous_week_minutes": record.PreviousWeekMinutes,
			"diff":                  record.Diff,
			"percent_change":        record.PercentChange,
			"plan_count":            record.PlanCount,
			"entry_count":           record.EntryCount,
			"week_start_unix":       record.WeekStart.Unix(),
		},
		recordedAt,
	)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		slog.WarnContext(ctx, "failed to write week snapshot to InfluxDB",
			slog.String("error", err.Error()),
			slog.Time("week_start", record.WeekStart),
		)
	}

	return nil
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
