package catalogue

import "errors"

var (
	// ErrEmptyCollectionName is returned when a collection has no name.
	ErrEmptyCollectionName = errors.New("collection name cannot be empty")

	// ErrEmptyImageDir is returned when no image cache directory is given.
	ErrEmptyImageDir = errors.New("image directory cannot be empty")

	// ErrNormalizerRequired is returned when Load is called without a normalizer.
	ErrNormalizerRequired = errors.New("normalizer required")

	// ErrMalformedCSV is returned when a canonical CSV is missing required columns.
	ErrMalformedCSV = errors.New("malformed canonical csv")
)
