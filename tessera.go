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


// Package tessera turns raw museum catalogue exports into a multimodal
// similarity-search index. It normalizes per-institution metadata dumps into
// a canonical record table, fetches the referenced images into a local
// cache, embeds descriptions and images through a CLIP-style encoder and
// exports the vectors to a search store.
package tessera

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/tessera/ai"
	"github.com/poiesic/tessera/ai/openai"
	"github.com/poiesic/tessera/catalogue"
	"github.com/poiesic/tessera/fetch"
	"github.com/poiesic/tessera/index"
	"github.com/poiesic/tessera/pipeline"
	"github.com/poiesic/tessera/source"
	"github.com/poiesic/tessera/source/bt"
	"github.com/poiesic/tessera/source/nms"
	"github.com/poiesic/tessera/source/smg"
	"github.com/poiesic/tessera/storage"
	"github.com/poiesic/tessera/storage/badger"
)

// DefaultRegistry returns a registry with every built-in institution
// registered: the Science Museum Group, the BT Digital Archives and
// National Museums Scotland.
func DefaultRegistry() (*source.Registry, error) {
	registry := source.NewRegistry()

	pairs := []struct {
		normalizer source.Normalizer
		archive    source.ImageArchive
	}{
		{smg.New(), smg.Archive{}},
		{bt.New(), bt.Archive{}},
		{nms.New(), nms.Archive{}},
	}
	for _, pair := range pairs {
		if err := registry.Register(pair.normalizer, pair.archive); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Workspace wires the catalogue components around a shared data directory:
// image caches under images/<collection>, the vector cache under vectors/,
// and index snapshots under indexes/.
type Workspace struct {
	dataDir    string
	registry   *source.Registry
	backend    *badger.Backend
	vectorRepo storage.VectorRepository
	provider   ai.Provider
	logger     *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the encoder endpoint configuration.
func WithAIConfig(config *ai.Config) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.aiConfig = config
	}
}

// WithProvider replaces the default OpenAI-compatible provider, mainly
// for tests.
func WithProvider(provider ai.Provider) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the vector cache in memory instead of on disk.
func WithInMemoryStorage() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.inMemory = true
	}
}

// NewWorkspace opens a workspace rooted at dataDir.
func NewWorkspace(dataDir string, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	registry, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filepath.Join(dataDir, "vectors"), options.inMemory)
	if err != nil {
		return nil, err
	}

	vectorRepo, err := badger.NewVectorRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			vectorRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Workspace{
		dataDir:    dataDir,
		registry:   registry,
		backend:    backend,
		vectorRepo: vectorRepo,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

// Close releases workspace resources.
func (w *Workspace) Close() error {
	if err := w.provider.Close(); err != nil {
		w.logger.Error("error closing AI provider", "err", err)
	}
	if err := w.vectorRepo.Close(); err != nil {
		w.logger.Error("error closing vector repository", "err", err)
		return err
	}
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Registry returns the institution registry.
func (w *Workspace) Registry() *source.Registry {
	return w.registry
}

// VectorRepository returns the embedding cache.
func (w *Workspace) VectorRepository() storage.VectorRepository {
	return w.vectorRepo
}

// ImageDir returns the image cache directory for a collection.
func (w *Workspace) ImageDir(name string) string {
	return filepath.Join(w.dataDir, "images", name)
}

// IndexPath returns the snapshot path for a collection's index.
func (w *Workspace) IndexPath(name string) string {
	return filepath.Join(w.dataDir, "indexes", name+".vecgo")
}

// NewCollection creates a collection for the named institution, backed by
// its image cache directory.
func (w *Workspace) NewCollection(name string, opts ...catalogue.Option) (*catalogue.Collection, error) {
	if _, err := w.registry.Normalizer(name); err != nil {
		return nil, err
	}
	return catalogue.NewCollection(name, w.ImageDir(name), opts...)
}

// NewFetcher creates an image fetcher for the named institution, using the
// politeness window its archive declares.
func (w *Workspace) NewFetcher(name string, opts ...fetch.Option) (*fetch.Fetcher, error) {
	archive, err := w.registry.Archive(name)
	if err != nil {
		return nil, err
	}
	return fetch.NewFetcher(archive, opts...)
}

// NewVectorizer creates an embedding pipeline backed by the workspace's
// provider and vector cache.
func (w *Workspace) NewVectorizer(config *pipeline.Config, progress io.Writer) (*pipeline.Vectorizer, error) {
	return pipeline.NewVectorizer(w.provider, w.vectorRepo, config, progress)
}

// NewIndexExporter creates an exporter writing to a fresh vecgo flat index
// snapshotted at the collection's index path. The caller owns the returned
// store and must Close it.
func (w *Workspace) NewIndexExporter(name string, dimension int) (*index.Exporter, *index.VecgoStore, error) {
	path := w.IndexPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	store, err := index.NewVecgoStore(dimension, path)
	if err != nil {
		return nil, nil, err
	}
	exporter, err := index.NewExporter(store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return exporter, store, nil
}
