package database

import "context"

// Store is a durable key-value store of string values. Get reports whether
// the key existed; a missing key is not an error.
type Store interface {
	Name() string
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
