package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithHistory sets how many upload status records are kept. The oldest
// record is evicted first; limit <= 0 keeps every record.
func WithHistory(limit int) Option {
	return func(s *MemoryStore) {
		s.history = limit
	}
}
