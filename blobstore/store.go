package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a key does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for the bytes under a cache root.
//
// Contract:
//   - Keys are slash-separated relative paths ("a/b/c").
//   - Implementations must be safe for concurrent use.
//   - Put replaces any existing value under the key.
//   - Delete is idempotent: removing a missing key is not an error.
type Store interface {
	// Put writes data under key, creating parent namespaces as needed.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the value under key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys with the given prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
