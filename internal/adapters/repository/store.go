// Package repository holds the active dataset snapshot and upload job state.
package repository

import (
	"context"

	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/internal/domain/model"
)

// DatasetStore publishes immutable dataset snapshots.
type DatasetStore interface {
	// Current returns the active snapshot. It is never nil.
	Current() *Snapshot

	// SwapIfNewer installs ds when seq is newer than the active snapshot's.
	// It reports whether the swap happened.
	SwapIfNewer(ds *dataset.Dataset, seq uint64) bool
}

// JobRepository tracks upload jobs.
type JobRepository interface {
	Create(ctx context.Context, j model.Job) error
	Update(ctx context.Context, id string, fn func(*model.Job)) (model.Job, error)
	Get(ctx context.Context, id string) (model.Job, error)
	List(ctx context.Context, limit int) []model.Job
	Len(ctx context.Context) int
}
