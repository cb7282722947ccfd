package ai

import "context"

// Embedder generates vector embeddings for both record modalities.
// The same underlying encoder serves both, so text and image vectors live
// in one embedding space and can be compared directly.
type Embedder interface {
	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. The returned slice contains embeddings in the same order as
	// the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedImages generates vector embeddings for multiple images, given
	// their raw encoded bytes (JPEG/PNG). The returned slice contains
	// embeddings in the same order as the input images.
	// Returns an error if any embedding generation fails.
	EmbedImages(ctx context.Context, images [][]byte) ([][]float32, error)
}

// Provider owns the shared encoder client.
//
// The encoder is expensive to set up, so it is created lazily on the first
// Embedder call and the same instance is reused for the rest of the
// process. Close releases it; the provider must not be used afterwards.
type Provider interface {
	// Embedder returns the shared embedding service, initializing it on
	// first use. Every call after a successful first call returns the
	// same instance; a failed initialization is returned on every call.
	Embedder() (Embedder, error)

	// Close releases resources held by the provider and its services.
	Close() error
}
