package fetch

import "errors"

var (
	// ErrArchiveRequired is returned when no image archive is provided.
	ErrArchiveRequired = errors.New("image archive required")

	// ErrNilHTTPClient is returned when a nil HTTP client is configured.
	ErrNilHTTPClient = errors.New("http client cannot be nil")

	// ErrInvalidDelayRange is returned when the delay bounds are inverted
	// or negative.
	ErrInvalidDelayRange = errors.New("invalid delay range")
)
