package store

import "context"

// NullStore is a no-op store that never keeps anything.
// Useful for tests or when persistence is disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore { return &NullStore{} }

// Load always reports a missing key.
func (NullStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Save does nothing.
func (NullStore) Save(ctx context.Context, key string, data []byte) error { return nil }

// Delete does nothing.
func (NullStore) Delete(ctx context.Context, key string) error { return nil }

// Close does nothing.
func (NullStore) Close() error { return nil }

var _ Store = (*NullStore)(nil)
