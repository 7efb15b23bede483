package storage

import "context"

// ObjectStore is the external object-storage collaborator holding uploaded
// receipt images. The pipeline only ever reads from it.
type ObjectStore interface {
	// Size returns the byte length of an object without fetching its payload.
	Size(ctx context.Context, key string) (int64, error)
	// Get returns the raw object bytes.
	Get(ctx context.Context, key string) ([]byte, error)
}
