package storage

import (
	"context"

	"github.com/poiesic/tessera/core"
)

// VectorRepository provides operations for caching embedding vectors.
type VectorRepository interface {
	// PutVectors stores one or more cached vectors, overwriting any
	// existing entries with the same ID. Sets CreatedAt if not already set.
	PutVectors(ctx context.Context, vectors ...*core.CachedVector) error

	// GetVector retrieves a cached vector by ID.
	// Returns ErrNotFound if no entry exists.
	GetVector(ctx context.Context, id core.ID) (*core.CachedVector, error)

	// GetVectors retrieves the cached vectors for the given IDs.
	// IDs with no cached entry are skipped, so the result may be shorter
	// than the input. Order follows the input order of the found IDs.
	GetVectors(ctx context.Context, ids ...core.ID) ([]*core.CachedVector, error)

	// CountVectors returns the number of cached vectors, optionally
	// restricted to a collection. An empty collection counts everything.
	CountVectors(ctx context.Context, collection string) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}
