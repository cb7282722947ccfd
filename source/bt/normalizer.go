// Package bt normalizes BT Digital Archives catalogue exports.
//
// The export is one XML document containing DScribeRecord elements; each
// record carries four child elements of interest (RefNo, Title, Thumbnail,
// Description). Images are served by the archive's CalmView endpoint,
// addressed by thumbnail filename in a query parameter.
package bt

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/tessera/core"
	"github.com/poiesic/tessera/source"
)

const (
	// CollectionName tags records and index entries from this source.
	CollectionName = "bt"

	recordTag    = "DScribeRecord"
	imageBaseURL = "http://www.digitalarchives.bt.com/CalmView/GetImage.ashx?db=Catalog&type=default&fname="
)

// Ensure interface compliance.
var (
	_ source.Normalizer   = (*Normalizer)(nil)
	_ source.ImageArchive = Archive{}
)

// Normalizer parses BT XML exports.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a BT normalizer.
func New() *Normalizer {
	return &Normalizer{
		logger: slog.Default().With("component", "bt-normalizer"),
	}
}

// Name returns the collection name.
func (n *Normalizer) Name() string { return CollectionName }

// rawRecord mirrors the four child elements extracted per record.
// Absent elements unmarshal to "".
type rawRecord struct {
	RefNo       string `xml:"RefNo"`
	Title       string `xml:"Title"`
	Thumbnail   string `xml:"Thumbnail"`
	Description string `xml:"Description"`
}

// Normalize walks the XML document and extracts every DScribeRecord
// element, wherever it sits in the tree. The Downloaded flag is computed by
// checking file existence at load time, not lazily.
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

		parsed, err := n.parse(file, imgDir)
		file.Close()
		if err != nil {
			return nil, err
		}
		records = append(records, parsed...)
	}

	n.logger.Info("normalized records", "records", len(records), "files", len(paths))
	return records, nil
}

// parse streams tokens and decodes each record element as it is reached.
func (n *Normalizer) parse(r io.Reader, imgDir string) ([]core.Record, error) {
	decoder := xml.NewDecoder(r)

	var records []core.Record
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != recordTag {
			continue
		}

		var raw rawRecord
		if err := decoder.DecodeElement(&raw, &start); err != nil {
			n.logger.Warn("skipping malformed record", "err", err)
			continue
		}

		records = append(records, normalizeRecord(&raw, imgDir))
	}
	return records, nil
}

func normalizeRecord(raw *rawRecord, imgDir string) core.Record {
	record := core.Record{
		RecordID:    core.CollapseWhitespace(raw.RefNo),
		Names:       core.CollapseWhitespace(raw.Title),
		Description: core.CollapseWhitespace(raw.Description),
		ImgLoc:      raw.Thumbnail,
	}

	if raw.Thumbnail != "" {
		record.ImgName = filepath.Base(raw.Thumbnail)
		record.ImgPath = filepath.Join(imgDir, record.ImgName)
		if info, err := os.Stat(record.ImgPath); err == nil && !info.IsDir() {
			record.Downloaded = true
		}
	}

	return record
}

// Archive is the BT image-hosting convention: the thumbnail filename is
// passed as a query parameter to the CalmView image handler.
type Archive struct{}

// Name returns the collection name.
func (Archive) Name() string { return CollectionName }

// ImageURL builds the remote URL for a thumbnail filename.
func (Archive) ImageURL(loc string) string {
	return imageBaseURL + loc
}

// LocalName keeps the archive's native filename, dropping any path prefix.
func (Archive) LocalName(loc string) string {
	return filepath.Base(loc)
}

// Fetchable reports whether the location resolves on the image server.
func (Archive) Fetchable(loc string) bool {
	return loc != ""
}

// DelayRange returns the politeness delay bounds between requests.
// The BT archive is the most rate-sensitive of the three.
func (Archive) DelayRange() (time.Duration, time.Duration) {
	return 500 * time.Millisecond, 1500 * time.Millisecond
}
