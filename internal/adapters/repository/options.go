package repository

// Option configures a JobStore.
type Option func(*JobStore)

// WithRetention bounds how many jobs are kept. Finished jobs are evicted
// oldest first; n <= 0 keeps every job.
func WithRetention(n int) Option {
	return func(s *JobStore) {
		s.retention = n
	}
}
