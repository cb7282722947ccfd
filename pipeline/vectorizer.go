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


package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/poiesic/tessera/ai"
	"github.com/poiesic/tessera/catalogue"
	"github.com/poiesic/tessera/core"
	"github.com/poiesic/tessera/storage"
)

// Config holds configuration for the vectorize operation.
type Config struct {
	// BatchSize is the number of records submitted to the encoder per call
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed encoder calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      64,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Vectorizer attaches embedding vectors to the records of a collection,
// one modality at a time.
type Vectorizer struct {
	provider ai.Provider
	cache    storage.VectorRepository
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewVectorizer creates a new vectorizer.
// cache may be nil, in which case every eligible record is encoded fresh.
// progress: where to write progress output (typically os.Stderr)
func NewVectorizer(provider ai.Provider, cache storage.VectorRepository, config *Config, progress io.Writer) (*Vectorizer, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Vectorizer{
		provider: provider,
		cache:    cache,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "vectorizer"),
	}, nil
}

// Vectorize attaches embeddings for the given modalities to every eligible
// record of the collection, in row order. All modalities are validated up
// front, so an unknown modality fails before any record is touched. The
// encoder is only initialized when at least one record actually needs it;
// a fully cached run never contacts the encoder.
func (v *Vectorizer) Vectorize(ctx context.Context, col *catalogue.Collection, modalities ...core.Modality) error {
	for _, modality := range modalities {
		if err := core.ValidateModality(modality); err != nil {
			return err
		}
	}

	for _, modality := range modalities {
		if err := v.vectorizeModality(ctx, col, modality); err != nil {
			return fmt.Errorf("vectorizing %s: %w", modality, err)
		}
	}
	return nil
}

// workItem pairs a record index with its encoder input.
type workItem struct {
	row   int
	input string
}

func (v *Vectorizer) vectorizeModality(ctx context.Context, col *catalogue.Collection, modality core.Modality) error {
	records := col.Records()

	var work []workItem
	for i := range records {
		record := &records[i]
		if record.Vector(modality) != nil {
			continue
		}
		input := record.EmbeddingInput(modality)
		if input == "" {
			continue
		}
		if modality == core.ModalityImage {
			if !record.Downloaded {
				continue
			}
			if err := checkImage(input); err != nil {
				v.logger.Warn("skipping undecodable image", "record_id", record.RecordID, "path", input, "error", err)
				continue
			}
		}
		work = append(work, workItem{row: i, input: input})
	}

	if len(work) == 0 {
		fmt.Fprintf(v.progress, "No %s records to vectorize in %s\n", modality, col.Name())
		return nil
	}

	eligible := len(work)
	work, err := v.applyCached(ctx, col, modality, work)
	if err != nil {
		return err
	}
	hits := eligible - len(work)

	fmt.Fprintf(v.progress, "Vectorizing %d %s records in %s (batch size: %d)\n",
		len(work), modality, col.Name(), v.config.BatchSize)

	if len(work) == 0 {
		v.logger.Info("all vectors served from cache", "collection", col.Name(), "modality", modality, "hits", hits)
		return nil
	}

	embedder, err := v.provider.Embedder()
	if err != nil {
		return fmt.Errorf("initializing encoder: %w", err)
	}

	tracker := NewProgressTracker(v.progress, len(work), v.config.ReportInterval)
	tracker.Start()

	for start := 0; start < len(work); start += v.config.BatchSize {
		end := min(start+v.config.BatchSize, len(work))
		batch := work[start:end]

		vectors, err := v.embedBatch(ctx, embedder, modality, batch)
		if err != nil {
			return err
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: got %d vectors for %d inputs", ErrEmbeddingCountMismatch, len(vectors), len(batch))
		}

		cached := make([]*core.CachedVector, 0, len(batch))
		for j, item := range batch {
			vector := NormalizeVector(vectors[j])
			record := &records[item.row]
			if err := record.SetVector(modality, vector); err != nil {
				return err
			}
			cached = append(cached, &core.CachedVector{
				Id:         record.CacheID(col.Name(), modality),
				Collection: col.Name(),
				RecordID:   record.RecordID,
				Modality:   modality,
				Vector:     vector,
			})
		}

		if v.cache != nil {
			if err := v.cache.PutVectors(ctx, cached...); err != nil {
				return fmt.Errorf("caching vectors: %w", err)
			}
		}

		tracker.Increment(len(batch))
	}

	tracker.Finish()
	v.logger.Info("vectorized records",
		"collection", col.Name(), "modality", modality,
		"encoded", len(work), "cache_hits", hits,
		"elapsed", tracker.Elapsed().Round(time.Millisecond))
	return nil
}

// applyCached attaches cached vectors and returns the work items still
// needing the encoder.
func (v *Vectorizer) applyCached(ctx context.Context, col *catalogue.Collection, modality core.Modality, work []workItem) ([]workItem, error) {
	if v.cache == nil {
		return work, nil
	}

	records := col.Records()
	remaining := make([]workItem, 0, len(work))
	for _, item := range work {
		record := &records[item.row]
		id := record.CacheID(col.Name(), modality)
		cached, err := v.cache.GetVector(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				remaining = append(remaining, item)
				continue
			}
			return nil, fmt.Errorf("reading vector cache: %w", err)
		}
		if len(cached.Vector) == 0 {
			remaining = append(remaining, item)
			continue
		}
		if err := record.SetVector(modality, cached.Vector); err != nil {
			return nil, err
		}
	}
	return remaining, nil
}

// embedBatch encodes one batch of inputs, retrying transient failures.
func (v *Vectorizer) embedBatch(ctx context.Context, embedder ai.Embedder, modality core.Modality, batch []workItem) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		var err error
		switch modality {
		case core.ModalityText:
			texts := make([]string, len(batch))
			for i, item := range batch {
				texts[i] = item.input
			}
			vectors, err = embedder.EmbedTexts(ctx, texts)
		case core.ModalityImage:
			images := make([][]byte, len(batch))
			for i, item := range batch {
				images[i], err = os.ReadFile(item.input)
				if err != nil {
					return err
				}
			}
			vectors, err = embedder.EmbedImages(ctx, images)
		}
		return err
	}

	if err := RetryWithBackoff(ctx, operation, v.config.MaxRetries, v.config.RetryDelay); err != nil {
		return nil, fmt.Errorf("encoding batch: %w", err)
	}
	return vectors, nil
}

// checkImage verifies that the file at path holds a decodable image header.
func checkImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _, err = image.DecodeConfig(f)
	return err
}
