package queue

// Default queue configuration constants.
const (
	defaultCompactThreshold = 1024
	defaultPriority         = 10
)

// settings is shared by both backends; options that do not apply to a
// backend are ignored by it.
type settings struct {
	capacity         int
	compactThreshold int
	defaultPriority  int
}

func newSettings(opts []Option) settings {
	s := settings{
		compactThreshold: defaultCompactThreshold,
		defaultPriority:  defaultPriority,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a queue.
type Option func(*settings)

// WithCapacity bounds the number of pending requests. Zero or negative means
// unbounded.
func WithCapacity(capacity int) Option {
	return func(s *settings) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithCompactThreshold sets how many consumed slots the FIFO backend tolerates
// at the front of its buffer before compacting.
func WithCompactThreshold(threshold int) Option {
	return func(s *settings) {
		if threshold > 0 {
			s.compactThreshold = threshold
		}
	}
}

// WithDefaultPriority sets the priority given to requests submitted without
// one (priority backend only).
func WithDefaultPriority(priority int) Option {
	return func(s *settings) {
		s.defaultPriority = priority
	}
}
