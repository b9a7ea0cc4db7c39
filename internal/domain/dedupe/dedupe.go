// Package dedupe tracks uploads that are queued or being ingested so that
// the same payload submitted twice maps onto one job.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Tracker maps payload checksums to the job currently handling them.
type Tracker interface {
	// Claim records checksum for jobID unless it is already in flight, in
	// which case it returns the existing job and false.
	Claim(ctx context.Context, checksum, jobID string) (existing string, claimed bool)

	// Release forgets checksum if jobID still owns it. It reports whether
	// the claim was dropped.
	Release(ctx context.Context, checksum, jobID string) bool

	// Replace hands the claim on checksum from staleID to jobID. It fails
	// when another job owns the checksum; an unclaimed checksum is claimed.
	Replace(ctx context.Context, checksum, staleID, jobID string) bool

	Size() int64
}

type entry struct {
	checksum string
	jobID    string
}

type inFlight struct {
	mu      sync.Mutex
	byKey   map[string]*list.Element
	order   *list.List // oldest at front
	maxSize int
	size    atomic.Int64
}

// NewTracker returns an in-memory Tracker. The default bound is 1024 entries.
func NewTracker(opts ...Option) Tracker {
	d := &inFlight{maxSize: 1024}
	for _, opt := range opts {
		opt(d)
	}
	d.byKey = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inFlight) Claim(_ context.Context, checksum, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.byKey[checksum]; ok {
		return el.Value.(entry).jobID, false
	}
	d.claimLocked(checksum, jobID)
	return jobID, true
}

func (d *inFlight) claimLocked(checksum, jobID string) {
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.byKey, oldest.Value.(entry).checksum)
		d.size.Add(-1)
	}
	d.byKey[checksum] = d.order.PushBack(entry{checksum: checksum, jobID: jobID})
	d.size.Add(1)
}

func (d *inFlight) Release(_ context.Context, checksum, jobID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.byKey[checksum]
	if !ok || el.Value.(entry).jobID != jobID {
		return false
	}
	d.order.Remove(el)
	delete(d.byKey, checksum)
	d.size.Add(-1)
	return true
}

func (d *inFlight) Replace(_ context.Context, checksum, staleID, jobID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.byKey[checksum]
	if !ok {
		d.claimLocked(checksum, jobID)
		return true
	}
	if el.Value.(entry).jobID != staleID {
		return false
	}
	el.Value = entry{checksum: checksum, jobID: jobID}
	d.order.MoveToBack(el)
	return true
}

func (d *inFlight) Size() int64 {
	return d.size.Load()
}
