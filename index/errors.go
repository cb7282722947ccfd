package index

import "errors"

var (
	// ErrStoreRequired is returned when an exporter is created without a store.
	ErrStoreRequired = errors.New("index store is required")

	// ErrInvalidDimension is returned when a store is created with a
	// non-positive vector dimension.
	ErrInvalidDimension = errors.New("vector dimension must be greater than 0")
)
