// Package nms normalizes National Museums Scotland database exports.
//
// The export arrives as one or more CSV files with overlapping but not
// identical column sets. Only the columns common to every input survive;
// rows are concatenated, deduplicated by primary reference, and exploded so
// that a record with several image references becomes several canonical
// rows sharing one record id.
package nms

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/tessera/core"
	"github.com/poiesic/tessera/source"
)

const (
	// CollectionName tags records and index entries from this source.
	CollectionName = "nms"

	imageBaseURL = "https://www.nms.ac.uk/search.axd?command=getcontent&server=Detail&value="

	// imageExt is appended to image references; the detail server always
	// returns JPEG.
	imageExt = ".jpg"

	// Source column names.
	colPrimaryRef  = "priref"
	colObjectName  = "object_name"
	colCategory    = "object_category"
	colDescription = "description"
	colReference   = "reproduction.reference"
)

// Ensure interface compliance.
var (
	_ source.Normalizer   = (*Normalizer)(nil)
	_ source.ImageArchive = Archive{}
)

// Normalizer parses NMS CSV exports.
type Normalizer struct {
	logger *slog.Logger
}

// New creates an NMS normalizer.
func New() *Normalizer {
	return &Normalizer{
		logger: slog.Default().With("component", "nms-normalizer"),
	}
}

// Name returns the collection name.
func (n *Normalizer) Name() string { return CollectionName }

// table holds one parsed CSV: a header index and its rows.
type table struct {
	columns map[string]int
	rows    [][]string
}

// Normalize reads the exports, intersects their columns, deduplicates by
// primary reference and explodes the pipe-delimited image references into
// one canonical row per image.
func (n *Normalizer) Normalize(ctx context.Context, imgDir string, paths ...string) ([]core.Record, error) {
	if len(paths) == 0 {
		return nil, source.ErrNoInputFiles
	}

	tables := make([]*table, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, err := readTable(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	common := commonColumns(tables)
	n.logger.Debug("intersected columns", "columns", len(common), "files", len(paths))

	seen := make(map[string]bool)
	var records []core.Record
	for _, t := range tables {
		for _, row := range t.rows {
			ref := cell(t, row, common, colPrimaryRef)
			if ref != "" {
				if seen[ref] {
					continue // duplicate primary reference
				}
				seen[ref] = true
			}
			records = append(records, explode(t, row, common, imgDir)...)
		}
	}

	n.logger.Info("normalized records", "records", len(records), "files", len(paths))
	return records, nil
}

// readTable parses one CSV export. Rows with the wrong field count are
// skipped rather than failing the batch.
func readTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	t := &table{columns: columns}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, not a malformed file.
			continue
		}
		if len(row) == len(header) {
			t.rows = append(t.rows, row)
		}
	}
	return t, nil
}

// commonColumns returns the set of column names present in every table.
func commonColumns(tables []*table) map[string]bool {
	common := make(map[string]bool)
	if len(tables) == 0 {
		return common
	}
	for name := range tables[0].columns {
		common[name] = true
	}
	for _, t := range tables[1:] {
		for name := range common {
			if _, ok := t.columns[name]; !ok {
				delete(common, name)
			}
		}
	}
	return common
}

// cell reads a named column from a row, returning "" when the column did
// not survive the intersection or the value is blank.
func cell(t *table, row []string, common map[string]bool, name string) string {
	if !common[name] {
		return ""
	}
	idx, ok := t.columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// explode maps one source row to one canonical record per image reference.
// A row without image references still yields one record with empty image
// fields.
func explode(t *table, row []string, common map[string]bool, imgDir string) []core.Record {
	base := core.Record{
		RecordID:    cell(t, row, common, colPrimaryRef),
		Names:       core.CollapseWhitespace(cell(t, row, common, colObjectName)),
		Description: core.CollapseWhitespace(cell(t, row, common, colDescription)),
		Taxonomy:    core.CollapseWhitespace(cell(t, row, common, colCategory)),
	}

	refs := splitRefs(cell(t, row, common, colReference))
	if len(refs) == 0 {
		return []core.Record{base}
	}

	records := make([]core.Record, 0, len(refs))
	for _, ref := range refs {
		record := base
		record.ImgLoc = ref
		record.ImgName = ref + imageExt
		record.ImgPath = filepath.Join(imgDir, record.ImgName)
		if info, err := os.Stat(record.ImgPath); err == nil && !info.IsDir() {
			record.Downloaded = true
		}
		records = append(records, record)
	}
	return records
}

// splitRefs splits the pipe-delimited reference field, dropping blanks.
func splitRefs(field string) []string {
	if field == "" {
		return nil
	}
	var refs []string
	for _, part := range strings.Split(field, "|") {
		part = strings.TrimSpace(part)
		if part != "" {
			refs = append(refs, part)
		}
	}
	return refs
}

// Archive is the NMS image-hosting convention: the reference is passed as a
// query-parameter value to the museum's detail search endpoint.
type Archive struct{}

// Name returns the collection name.
func (Archive) Name() string { return CollectionName }

// ImageURL builds the remote URL for an image reference.
func (Archive) ImageURL(loc string) string {
	return imageBaseURL + loc
}

// LocalName appends the fixed image extension to the reference.
func (Archive) LocalName(loc string) string {
	return loc + imageExt
}

// Fetchable reports whether the reference resolves on the detail server.
// Only PF-prefixed references are servable media; other reference kinds are
// internal database pointers.
func (Archive) Fetchable(loc string) bool {
	return strings.HasPrefix(loc, "PF")
}

// DelayRange returns the politeness delay bounds between requests.
func (Archive) DelayRange() (time.Duration, time.Duration) {
	return 250 * time.Millisecond, 250 * time.Millisecond
}
