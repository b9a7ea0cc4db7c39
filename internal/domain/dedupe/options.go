package dedupe

// Option configures a Tracker.
type Option func(*inFlight)

// WithMaxSize bounds the number of tracked uploads. When full, the oldest
// claim is forgotten. maxSize <= 0 disables the bound.
func WithMaxSize(maxSize int) Option {
	return func(d *inFlight) {
		d.maxSize = maxSize
	}
}
