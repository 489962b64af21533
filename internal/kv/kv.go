package kv

import "context"

// Store is the durable key-value storage the cart and wishlist persist into.
// Absence is reported via the bool, not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
