package domain

import "context"

//go:generate mockgen -source=taskstore.go -destination=taskstore_mock.go -package=domain

// RawRecord is an arbitrary plan or task payload as returned by the task
// store. It must pass through the normalizer before use; the store contract
// only guarantees that create/update calls round-trip the fields they were
// given, not that the shape is canonical.
type RawRecord = map[string]any

// PageParams selects a page of plans when listing.
type PageParams struct {
	Page    int
	PerPage int
}

// TaskStore is the remote persistence collaborator. It accepts and returns
// raw records; timeout, retry and cancellation policy live behind it.
type TaskStore interface {
	CreatePlan(ctx context.Context, payload RawRecord) (RawRecord, error)
	UpdatePlan(ctx context.Context, planID string, patch RawRecord) (RawRecord, error)
	AddTask(ctx context.Context, planID string, payload RawRecord) (RawRecord, error)
	UpdateTask(ctx context.Context, planID, taskID string, patch RawRecord) (RawRecord, error)
	ListPlans(ctx context.Context, page PageParams) ([]RawRecord, error)
}
