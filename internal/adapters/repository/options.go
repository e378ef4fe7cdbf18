package repository

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithSeed preloads the registry with items, in order.
// Later duplicates of an id are skipped so the registry starts consistent.
func WithSeed(items []Item) Option {
	return func(s *MemStore) {
		s.seed = append(s.seed[:0:0], items...)
	}
}
