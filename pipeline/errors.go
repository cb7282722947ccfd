package pipeline

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrProviderRequired is returned when a vectorizer is created without a provider.
	ErrProviderRequired = errors.New("embedding provider is required")

	// ErrEmbeddingCountMismatch is returned when the encoder returns a different
	// number of vectors than inputs submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match input count")
)
