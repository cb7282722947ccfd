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


package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/tessera/catalogue"
	"github.com/poiesic/tessera/core"
)

// Entry is one unit of the export: an embedding vector, the document it was
// derived from, a metadata map and a positional ID.
type Entry struct {
	// ID is "{record_id}_{modality}_{pos}", where pos is the record's row
	// index in the exported table.
	ID string

	// Vector is the unit-normalized embedding.
	Vector []float32

	// Document is the record's description text, for both modalities; the
	// image path travels in the metadata.
	Document string

	// Metadata carries collection, modality, record_id and img_path.
	Metadata map[string]string
}

// Store receives export entries. Implementations decide persistence.
type Store interface {
	// Add inserts entries into the store.
	Add(ctx context.Context, entries ...Entry) error

	// Flush persists buffered state. Called once after a successful export.
	Flush() error

	// Close releases resources.
	Close() error
}

// Exporter walks a collection and writes one entry per record and modality
// to a Store.
type Exporter struct {
	store  Store
	logger *slog.Logger
}

// NewExporter creates an exporter writing to store.
func NewExporter(store Store) (*Exporter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	return &Exporter{
		store:  store,
		logger: slog.Default().With("component", "exporter"),
	}, nil
}

// Export writes the collection's vectors for the given modalities to the
// store and flushes it. A record is exported only when it carries a vector
// for every requested modality; it then yields one entry per modality, all
// sharing the record's row position. Returns the number of entries written.
func (e *Exporter) Export(ctx context.Context, col *catalogue.Collection, modalities ...core.Modality) (int, error) {
	for _, modality := range modalities {
		if err := core.ValidateModality(modality); err != nil {
			return 0, err
		}
	}

	records := col.Records()
	written := 0
	skipped := 0
	for pos := range records {
		record := &records[pos]
		if !hasAll(record, modalities) {
			skipped++
			continue
		}

		for _, modality := range modalities {
			entry := Entry{
				ID:       fmt.Sprintf("%s_%s_%d", record.RecordID, modality, pos),
				Vector:   record.Vector(modality),
				Document: record.Description,
				Metadata: map[string]string{
					"collection": col.Name(),
					"modality":   string(modality),
					"record_id":  record.RecordID,
					"img_path":   record.ImgPath,
				},
			}
			if err := e.store.Add(ctx, entry); err != nil {
				return written, fmt.Errorf("adding entry %s: %w", entry.ID, err)
			}
			written++
		}
	}

	e.logger.Info("exported collection",
		"collection", col.Name(), "entries", written, "skipped_records", skipped)

	if err := e.store.Flush(); err != nil {
		return written, fmt.Errorf("flushing store: %w", err)
	}
	return written, nil
}

// hasAll reports whether the record carries a vector for every modality.
func hasAll(record *core.Record, modalities []core.Modality) bool {
	for _, modality := range modalities {
		if len(record.Vector(modality)) == 0 {
			return false
		}
	}
	return true
}
