package mock

import (
	"context"
	"hash/fnv"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedImagesFunc is called by EmbedImages if set.
	// If nil, uses default deterministic behavior.
	EmbedImagesFunc func(ctx context.Context, images [][]byte) ([][]float32, error)

	textCalls  int
	imageCalls int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions on call counts.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.textCalls++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = generateDeterministicVector([]byte(text), 384)
	}
	return embeddings, nil
}

// EmbedImages generates deterministic embeddings for multiple images.
func (m *MockEmbedder) EmbedImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	m.imageCalls++

	if m.EmbedImagesFunc != nil {
		return m.EmbedImagesFunc(ctx, images)
	}

	embeddings := make([][]float32, len(images))
	for i, img := range images {
		embeddings[i] = generateDeterministicVector(img, 384)
	}
	return embeddings, nil
}

// TextCalls returns the number of EmbedTexts calls.
func (m *MockEmbedder) TextCalls() int { return m.textCalls }

// ImageCalls returns the number of EmbedImages calls.
func (m *MockEmbedder) ImageCalls() int { return m.imageCalls }

// Reset clears the call counts and injected behavior.
func (m *MockEmbedder) Reset() {
	m.textCalls = 0
	m.imageCalls = 0
	m.EmbedTextsFunc = nil
	m.EmbedImagesFunc = nil
}

// generateDeterministicVector creates a deterministic embedding vector from
// input bytes. It uses FNV hash to ensure the same input always produces
// the same vector.
func generateDeterministicVector(input []byte, dim int) []float32 {
	h := fnv.New32a()
	h.Write(input)
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// Simple pseudo-random generation based on seed and index
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	// Normalize to unit vector
	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		norm := float32(1.0) / float32(sumSquares)
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
