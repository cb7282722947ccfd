package index

import (
	"context"

	"github.com/hupe1980/vecgo"
	"github.com/hupe1980/vecgo/metadata"
)

// VecgoStore is a Store backed by an in-process vecgo flat index with
// cosine similarity, optionally snapshotted to a file on Flush.
type VecgoStore struct {
	db   *vecgo.Vecgo[string]
	path string
}

var _ Store = (*VecgoStore)(nil)

// NewVecgoStore creates a flat cosine index for vectors of the given
// dimension. If path is non-empty, Flush snapshots the index there.
func NewVecgoStore(dimension int, path string) (*VecgoStore, error) {
	if dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	db, err := vecgo.Flat[string](dimension).Cosine().Build()
	if err != nil {
		return nil, err
	}

	return &VecgoStore{
		db:   db,
		path: path,
	}, nil
}

// Add inserts entries into the index. The entry document becomes the
// payload; the entry ID and metadata become filterable metadata.
func (s *VecgoStore) Add(ctx context.Context, entries ...Entry) error {
	for _, entry := range entries {
		md := metadata.Metadata{
			"id": metadata.String(entry.ID),
		}
		for key, value := range entry.Metadata {
			md[key] = metadata.String(value)
		}

		_, err := s.db.Insert(ctx, vecgo.VectorWithData[string]{
			Vector:   entry.Vector,
			Data:     entry.Document,
			Metadata: md,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Flush snapshots the index to the configured path, if any.
func (s *VecgoStore) Flush() error {
	if s.path == "" {
		return nil
	}
	return s.db.SaveToFile(s.path)
}

// Close releases index resources.
func (s *VecgoStore) Close() error {
	return s.db.Close()
}

// KNNSearch runs a k-nearest-neighbour query against the index.
func (s *VecgoStore) KNNSearch(ctx context.Context, query []float32, k int) ([]vecgo.SearchResult[string], error) {
	return s.db.KNNSearch(ctx, query, k)
}
