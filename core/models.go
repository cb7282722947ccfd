package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for cached vectors.
// It is generated using content-based hashing so that identical
// (collection, record, modality, content) tuples map to the same entry.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Modality identifies which side of a record an embedding is computed from.
type Modality string

const (
	// ModalityText embeds the record's description text.
	ModalityText Modality = "text"
	// ModalityImage embeds the record's cached image file.
	ModalityImage Modality = "image"
)

// Record is the canonical catalogue row that every source format is
// normalized into. String fields degrade to "" when the source export is
// missing the corresponding data; a record is never rejected for a missing
// optional field.
type Record struct {
	RecordID    string // Source collection identifier, unique after dedup
	Names       string // Name variants, semicolon-joined
	Description string // Descriptive fragments, semicolon-joined, whitespace-collapsed
	Taxonomy    string // Hierarchy terms in institution sort order, semicolon-joined
	ImgLoc      string // Remote image location per the source's convention
	ImgName     string // Flattened local filename derived from ImgLoc
	ImgPath     string // Full path in the local image cache (may not exist)
	Downloaded  bool   // True iff ImgPath existed at the last cache scan

	// Populated by the embedding pipeline, never by normalizers.
	TextVector  []float32
	ImageVector []float32
}

// HasImage reports whether the record references a remote image at all.
func (r *Record) HasImage() bool {
	return r.ImgLoc != ""
}

// Vector returns the embedding attached for the given modality, or nil.
func (r *Record) Vector(modality Modality) []float32 {
	switch modality {
	case ModalityText:
		return r.TextVector
	case ModalityImage:
		return r.ImageVector
	}
	return nil
}

// SetVector attaches an embedding for the given modality.
func (r *Record) SetVector(modality Modality, vector []float32) error {
	switch modality {
	case ModalityText:
		r.TextVector = vector
	case ModalityImage:
		r.ImageVector = vector
	default:
		return ValidateModality(modality)
	}
	return nil
}

// EmbeddingInput returns the raw input the encoder sees for a modality:
// the lower-cased description for text, the cache path for image.
func (r *Record) EmbeddingInput(modality Modality) string {
	switch modality {
	case ModalityText:
		return LowerText(r.Description)
	case ModalityImage:
		return r.ImgPath
	}
	return ""
}

// CacheID derives the vector-cache key for one modality of the record.
// The embedded content participates in the hash, so editing a description
// or repointing an image path invalidates the cached vector naturally.
func (r *Record) CacheID(collection string, modality Modality) ID {
	return IDFromContent(collection + "\x1f" + r.RecordID + "\x1f" + string(modality) + "\x1f" + r.EmbeddingInput(modality))
}

// CachedVector is a persisted embedding, keyed by content hash so that
// vectorize runs can resume across process invocations without re-calling
// the encoder.
type CachedVector struct {
	Id         ID
	Collection string
	RecordID   string
	Modality   Modality
	Vector     []float32
	CreatedAt  time.Time
}
