// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tessera/core"
	"github.com/poiesic/tessera/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (storage.VectorRepository, error) {
	return &VectorRepository{
		backend: backend,
	}, nil
}

// Close releases resources. VectorRepository has no resources of its own;
// the backend is closed by its owner.
func (r *VectorRepository) Close() error {
	return nil
}

// PutVectors stores one or more cached vectors, overwriting existing entries.
func (r *VectorRepository) PutVectors(ctx context.Context, vectors ...*core.CachedVector) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, vector := range vectors {
			if vector.CreatedAt.IsZero() {
				vector.CreatedAt = time.Now().UTC()
			}
			key := makeVectorKey(vector.Id)
			value := storage.MarshalCachedVector(vector)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetVector retrieves a cached vector by ID.
func (r *VectorRepository) GetVector(ctx context.Context, id core.ID) (*core.CachedVector, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var vector *core.CachedVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		vector, err = readVector(tx, makeVectorKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if vector == nil {
		return nil, storage.ErrNotFound
	}
	return vector, nil
}

// GetVectors retrieves the cached vectors for the given IDs.
// IDs with no cached entry are skipped.
func (r *VectorRepository) GetVectors(ctx context.Context, ids ...core.ID) ([]*core.CachedVector, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var vectors []*core.CachedVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			vector, err := readVector(tx, makeVectorKey(id))
			if err != nil {
				return err
			}
			if vector == nil {
				continue
			}
			vectors = append(vectors, vector)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// CountVectors returns the number of cached vectors, optionally restricted
// to a collection.
func (r *VectorRepository) CountVectors(ctx context.Context, collection string) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		// Values are only needed when filtering by collection.
		opts.PrefetchValues = collection != ""
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if collection == "" {
				count++
				continue
			}
			var vector *core.CachedVector
			err := iter.Item().Value(func(val []byte) error {
				var err error
				vector, err = storage.UnmarshalCachedVector(val)
				return err
			})
			if err != nil {
				return err
			}
			if vector != nil && vector.Collection == collection {
				count++
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// readVector reads a cached vector by key, returning nil if not found.
func readVector(tx *badger.Txn, key []byte) (*core.CachedVector, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var vector *core.CachedVector
	err = item.Value(func(val []byte) error {
		var err error
		vector, err = storage.UnmarshalCachedVector(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}
