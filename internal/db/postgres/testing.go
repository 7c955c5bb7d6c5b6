package postgres

// NewStoreForTest creates a Store over the provided pool (test-only).
func NewStoreForTest(p pool) *Store {
	return &Store{pool: p}
}
