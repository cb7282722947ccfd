package source

import (
	"context"
	"time"

	"github.com/poiesic/tessera/core"
)

// Normalizer parses one institution's raw catalogue export into canonical
// records. Implementations must degrade gracefully: a malformed or missing
// field within one record yields an empty default for that field, never a
// failure for the whole batch.
type Normalizer interface {
	// Name returns the short collection name ("smg", "bt", "nms").
	// It doubles as the registry key and the collection tag on exported
	// index entries.
	Name() string

	// Normalize reads one or more export files and returns canonical
	// records. imgDir is the local image cache directory; normalizers use
	// it to derive ImgPath and to compute Downloaded by checking file
	// existence at load time.
	Normalize(ctx context.Context, imgDir string, paths ...string) ([]core.Record, error)
}

// ImageArchive describes an institution's remote image-serving convention.
type ImageArchive interface {
	// Name returns the collection name the archive belongs to.
	Name() string

	// ImageURL builds the remote URL for a record's image location.
	ImageURL(loc string) string

	// LocalName turns an image location into a filename safe for the flat
	// cache directory.
	LocalName(loc string) string

	// Fetchable reports whether a location can be requested from the
	// archive at all. Some institutions export internal references that
	// the public image server does not resolve.
	Fetchable(loc string) bool

	// DelayRange returns the politeness delay bounds inserted between
	// requests against this archive.
	DelayRange() (min, max time.Duration)
}
