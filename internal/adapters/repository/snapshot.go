package repository

import (
	"sync/atomic"
	"time"

	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/pkg/metrics"
)

// Snapshot is one published dataset. Fields are never modified after Store.
type Snapshot struct {
	Dataset   *dataset.Dataset
	Seq       uint64 // submission sequence of the upload that produced it
	Version   uint64 // increments on every swap
	SwappedAt time.Time
}

// SnapshotStore keeps the active dataset behind an atomic pointer. Readers
// always see one complete dataset.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotStore starts with an empty dataset at sequence 0.
func NewSnapshotStore() *SnapshotStore {
	s := &SnapshotStore{}
	s.current.Store(&Snapshot{Dataset: dataset.Empty()})
	return s
}

// Current returns the active snapshot.
func (s *SnapshotStore) Current() *Snapshot {
	return s.current.Load()
}

// SwapIfNewer installs ds unless a snapshot from a newer or equal sequence is
// already active.
func (s *SnapshotStore) SwapIfNewer(ds *dataset.Dataset, seq uint64) bool {
	for {
		cur := s.current.Load()
		if seq <= cur.Seq {
			metrics.RecordStaleSwapSkipped()
			return false
		}
		next := &Snapshot{Dataset: ds, Seq: seq, Version: cur.Version + 1, SwappedAt: time.Now()}
		if s.current.CompareAndSwap(cur, next) {
			sum := ds.Summary()
			metrics.RecordDatasetSwap(sum.Records, sum.Dates, sum.Plants, float64(next.SwappedAt.Unix()))
			return true
		}
	}
}
