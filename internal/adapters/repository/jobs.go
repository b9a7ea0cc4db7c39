package repository

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/pkg/metrics"
)

const defaultRetention = 256

// JobStore keeps upload jobs in memory, oldest first.
type JobStore struct {
	mu        sync.RWMutex
	jobs      map[string]*list.Element
	order     *list.List
	retention int
}

// NewJobStore creates an empty store.
func NewJobStore(opts ...Option) *JobStore {
	s := &JobStore{
		jobs:      make(map[string]*list.Element),
		order:     list.New(),
		retention: defaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds j. IDs must be unique.
func (s *JobStore) Create(_ context.Context, j model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[j.ID]; ok {
		return ErrDuplicate
	}
	s.jobs[j.ID] = s.order.PushBack(&j)
	s.evict()
	metrics.UpdateJobsRetained(s.order.Len())
	return nil
}

// Update applies fn to the stored job and returns the result.
func (s *JobStore) Update(_ context.Context, id string, fn func(*model.Job)) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrNotFound
	}
	j := el.Value.(*model.Job)
	fn(j)
	j.ID = id
	return *j, nil
}

// Get returns a copy of the job.
func (s *JobStore) Get(_ context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrNotFound
	}
	return *el.Value.(*model.Job), nil
}

// List returns up to limit jobs, newest first. limit <= 0 returns all.
func (s *JobStore) List(_ context.Context, limit int) []model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.order.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Job, 0, n)
	for el := s.order.Back(); el != nil && len(out) < n; el = el.Prev() {
		out = append(out, *el.Value.(*model.Job))
	}
	return out
}

// Len returns the number of retained jobs.
func (s *JobStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

// evict drops the oldest finished jobs while over retention. Pending and
// running jobs are never dropped.
func (s *JobStore) evict() {
	if s.retention <= 0 {
		return
	}
	for el := s.order.Front(); el != nil && s.order.Len() > s.retention; {
		next := el.Next()
		if j := el.Value.(*model.Job); j.Status.Done() {
			s.order.Remove(el)
			delete(s.jobs, j.ID)
		}
		el = next
	}
}
