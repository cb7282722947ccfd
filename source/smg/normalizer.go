// Package smg normalizes Science Museum Group catalogue dumps.
//
// The export is newline-delimited JSON, one record per line, with the
// catalogue fields nested under "_source". Images are hosted on the group's
// co-images server and addressed by a path-like location string.
package smg

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/poiesic/tessera/core"
	"github.com/poiesic/tessera/source"
)

const (
	// CollectionName tags records and index entries from this source.
	CollectionName = "smg"

	imageBaseURL = "https://coimages.sciencemuseumgroup.org.uk/images"

	// maxLineBytes bounds the NDJSON scanner buffer. Some records carry
	// long conservation notes, well past bufio's 64K default.
	maxLineBytes = 4 * 1024 * 1024
)

// Ensure interface compliance.
var (
	_ source.Normalizer   = (*Normalizer)(nil)
	_ source.ImageArchive = Archive{}
)

// Normalizer parses SMG newline-delimited JSON dumps.
type Normalizer struct {
	logger *slog.Logger
}

// New creates an SMG normalizer.
func New() *Normalizer {
	return &Normalizer{
		logger: slog.Default().With("component", "smg-normalizer"),
	}
}

// Name returns the collection name.
func (n *Normalizer) Name() string { return CollectionName }

// rawRecord mirrors the subset of the dump schema we extract.
type rawRecord struct {
	ID     string    `json:"_id"`
	Source rawSource `json:"_source"`
}

type rawSource struct {
	Description []valueEntry `json:"description"`
	Name        []valueEntry `json:"name"`
	Terms       []rawTerm    `json:"terms"`
	Multimedia  []rawMedia   `json:"multimedia"`
}

type valueEntry struct {
	Value string `json:"value"`
}

type rawTerm struct {
	Hierarchy []hierarchyEntry `json:"hierarchy"`
}

type hierarchyEntry struct {
	Sort int          `json:"sort"`
	Name []valueEntry `json:"name"`
}

type rawMedia struct {
	Processed struct {
		Medium struct {
			Location string `json:"location"`
		} `json:"medium"`
	} `json:"processed"`
}

// Normalize reads NDJSON dumps and returns canonical records. Lines that do
// not parse as JSON are skipped with a warning; records with missing fields
// normalize those fields to "".
func (n *Normalizer) Normalize(ctx context.Context, imgDir string, paths ...string) ([]core.Record, error) {
	if len(paths) == 0 {
		return nil, source.ErrNoInputFiles
	}

	var records []core.Record
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		line := 0
		for scanner.Scan() {
			line++
			data := scanner.Bytes()
			if len(data) == 0 {
				continue
			}

			var raw rawRecord
			if err := json.Unmarshal(data, &raw); err != nil {
				n.logger.Warn("skipping malformed record", "path", path, "line", line, "err", err)
				continue
			}

			records = append(records, n.normalizeRecord(&raw, imgDir))
		}

		scanErr := scanner.Err()
		file.Close()
		if scanErr != nil {
			return nil, scanErr
		}
	}

	n.logger.Info("normalized records", "records", len(records), "files", len(paths))
	return records, nil
}

// normalizeRecord maps one raw dump record to the canonical shape.
func (n *Normalizer) normalizeRecord(raw *rawRecord, imgDir string) core.Record {
	record := core.Record{
		RecordID:    raw.ID,
		Names:       core.JoinFragments(values(raw.Source.Name)),
		Description: core.JoinFragments(values(raw.Source.Description)),
		Taxonomy:    taxonomy(raw.Source.Terms),
	}

	if len(raw.Source.Multimedia) > 0 {
		loc := raw.Source.Multimedia[0].Processed.Medium.Location
		if loc != "" {
			record.ImgLoc = loc
			record.ImgName = core.FlattenLocation(loc)
			record.ImgPath = filepath.Join(imgDir, record.ImgName)
		}
	}

	if record.ImgPath != "" {
		if info, err := os.Stat(record.ImgPath); err == nil && !info.IsDir() {
			record.Downloaded = true
		}
	}

	return record
}

// values extracts the value strings from a multi-valued field.
func values(entries []valueEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// taxonomy serializes the first term's hierarchy in ascending sort-key
// order. Entries without a name are dropped.
func taxonomy(terms []rawTerm) string {
	if len(terms) == 0 {
		return ""
	}

	hierarchy := terms[0].Hierarchy
	if len(hierarchy) == 0 {
		return ""
	}

	bySort := make(map[int]string, len(hierarchy))
	for _, entry := range hierarchy {
		if len(entry.Name) == 0 {
			continue
		}
		bySort[entry.Sort] = entry.Name[0].Value
	}

	keys := make([]int, 0, len(bySort))
	for k := range bySort {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = bySort[k]
	}
	return core.JoinFragments(names)
}

// Archive is the SMG image-hosting convention: direct concatenation of the
// location onto the co-images base URL.
type Archive struct{}

// Name returns the collection name.
func (Archive) Name() string { return CollectionName }

// ImageURL builds the remote URL for an image location.
func (Archive) ImageURL(loc string) string {
	return imageBaseURL + "/" + loc
}

// LocalName flattens the location into a cache filename.
func (Archive) LocalName(loc string) string {
	return core.FlattenLocation(loc)
}

// Fetchable reports whether the location resolves on the image server.
func (Archive) Fetchable(loc string) bool {
	return loc != ""
}

// DelayRange returns the politeness delay bounds between requests.
func (Archive) DelayRange() (time.Duration, time.Duration) {
	return 250 * time.Millisecond, 250 * time.Millisecond
}
