package domain

import (
	"context"
	"time"
)

// WeekSnapshotRecord is one recorded week-over-week comparison, written to a
// time-series backend for long-term study history.
type WeekSnapshotRecord struct {
	RecordedAt          time.Time
	WeekStart           time.Time
	CurrentWeekMinutes  int
	PreviousWeekMinutes int
	Diff                int
	PercentChange       float64
	PlanCount           int
	EntryCount          int
}

// ProgressSnapshotRecorder persists weekly comparison snapshots. Recording is
// best-effort; failures must never affect report responses.
type ProgressSnapshotRecorder interface {
	RecordWeekSnapshot(ctx context.Context, record WeekSnapshotRecord) error
	Flush(ctx context.Context) error
	Close() error
}
