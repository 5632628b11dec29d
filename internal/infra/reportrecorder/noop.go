package reportrecorder

import (
	"context"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.ProgressSnapshotRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordWeekSnapshot(_ context.Context, _ domain.WeekSnapshotRecord) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
