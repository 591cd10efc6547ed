package repositories

import "context"

// KeyValueStore is the local string key-value storage every backend implements.
// Errors are wrapped with models.ErrStorageUnavailable.
type KeyValueStore interface {
	// Get returns the value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
	Ping(ctx context.Context) error
}
