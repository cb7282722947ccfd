package source

import "errors"

var (
	// ErrNormalizerRequired is returned when a nil normalizer is registered.
	ErrNormalizerRequired = errors.New("normalizer required")

	// ErrEmptySourceName is returned when a normalizer has no name.
	ErrEmptySourceName = errors.New("source name cannot be empty")

	// ErrUnknownSource is returned when a lookup names an unregistered source.
	ErrUnknownSource = errors.New("unknown source")

	// ErrNoInputFiles is returned when Normalize is called without paths.
	ErrNoInputFiles = errors.New("no input files provided")
)
