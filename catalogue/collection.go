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


package catalogue

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/tessera/core"
	"github.com/poiesic/tessera/source"
)

// Collection is the in-memory canonical table for one institution's
// catalogue, together with its local image cache directory.
type Collection struct {
	name    string
	imgDir  string
	records []core.Record
	images  map[string]struct{}
	dataset *Dataset
	logger  *slog.Logger
}

// Option configures a Collection.
type Option func(*Collection) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCollection creates a collection named name with its image cache at
// imgDir. The directory is created if missing and scanned immediately.
func NewCollection(name, imgDir string, opts ...Option) (*Collection, error) {
	if name == "" {
		return nil, ErrEmptyCollectionName
	}
	if imgDir == "" {
		return nil, ErrEmptyImageDir
	}

	if err := os.MkdirAll(imgDir, 0755); err != nil {
		return nil, fmt.Errorf("creating image dir: %w", err)
	}

	c := &Collection{
		name:   name,
		imgDir: imgDir,
		logger: slog.Default().With("component", "catalogue", "collection", name),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if _, err := c.ScanImages(); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// ImageDir returns the local image cache directory.
func (c *Collection) ImageDir() string { return c.imgDir }

// Len returns the number of records in the table.
func (c *Collection) Len() int { return len(c.records) }

// String returns a short diagnostic representation.
func (c *Collection) String() string {
	return fmt.Sprintf("< %s catalogue with %d records >", c.name, len(c.records))
}

// Records returns the backing record slice. Callers that attach vectors
// mutate records through this slice; the table itself never reorders or
// drops rows in place.
func (c *Collection) Records() []core.Record {
	return c.records
}

// SetRecords replaces the table and recomputes Downloaded against the
// scanned cache. The Dataset view is invalidated until the next rebuild.
func (c *Collection) SetRecords(records []core.Record) {
	c.records = records
	c.dataset = nil
	c.RefreshDownloaded()
}

// Load normalizes the given export files through the normalizer and
// installs the result as the working table.
func (c *Collection) Load(ctx context.Context, normalizer source.Normalizer, paths ...string) error {
	if normalizer == nil {
		return ErrNormalizerRequired
	}

	records, err := normalizer.Normalize(ctx, c.imgDir, paths...)
	if err != nil {
		return fmt.Errorf("normalizing %s export: %w", normalizer.Name(), err)
	}

	c.SetRecords(records)
	c.logger.Info("loaded records", "records", len(records))
	return nil
}

// ScanImages re-reads the image cache directory and returns the number of
// cached files. The scanned set, not any in-memory counter, is the source
// of truth for the Downloaded flag.
func (c *Collection) ScanImages() (int, error) {
	entries, err := os.ReadDir(c.imgDir)
	if err != nil {
		return 0, fmt.Errorf("scanning image dir: %w", err)
	}

	images := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			images[entry.Name()] = struct{}{}
		}
	}
	c.images = images
	return len(images), nil
}

// RefreshDownloaded recomputes every record's Downloaded flag from the last
// cache scan.
func (c *Collection) RefreshDownloaded() {
	for i := range c.records {
		record := &c.records[i]
		if record.ImgName == "" {
			record.Downloaded = false
			continue
		}
		_, ok := c.images[record.ImgName]
		record.Downloaded = ok
	}
}

// Pending returns the indexes of rows whose image still needs fetching.
func (c *Collection) Pending() []int {
	var pending []int
	for i := range c.records {
		record := &c.records[i]
		if !record.Downloaded && record.HasImage() {
			pending = append(pending, i)
		}
	}
	return pending
}

// Filter reduces the table to rows with both a non-empty description and a
// downloaded image, then rebuilds the Dataset view so filtered rows cannot
// reach later stages. Rows are copied into a new table, never deleted in
// place; filtering twice is a no-op.
func (c *Collection) Filter() {
	kept := make([]core.Record, 0, len(c.records))
	for i := range c.records {
		record := &c.records[i]
		if record.Description != "" && record.Downloaded {
			kept = append(kept, *record)
		}
	}

	c.logger.Info("filtered records", "before", len(c.records), "after", len(kept))
	c.records = kept
	c.rebuildDataset()
}

// Dataset returns the columnar view, building it on first use.
func (c *Collection) Dataset() *Dataset {
	if c.dataset == nil {
		c.rebuildDataset()
	}
	return c.dataset
}

func (c *Collection) rebuildDataset() {
	c.dataset = newDataset(c.records)
}

// Dataset is the columnar projection of the table used for batch mapping:
// parallel slices indexed by row position.
type Dataset struct {
	RecordIDs    []string
	Descriptions []string
	ImagePaths   []string
}

func newDataset(records []core.Record) *Dataset {
	ds := &Dataset{
		RecordIDs:    make([]string, len(records)),
		Descriptions: make([]string, len(records)),
		ImagePaths:   make([]string, len(records)),
	}
	for i := range records {
		ds.RecordIDs[i] = records[i].RecordID
		ds.Descriptions[i] = records[i].Description
		ds.ImagePaths[i] = records[i].ImgPath
	}
	return ds
}

// Len returns the number of rows in the view.
func (d *Dataset) Len() int { return len(d.RecordIDs) }
