package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/tessera/core"
	"github.com/poiesic/tessera/storage"
)

func TestVectorBasics(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	vector := &core.CachedVector{
		Id:         core.ID(1),
		Collection: "smg",
		RecordID:   "co8084947",
		Modality:   core.ModalityText,
		Vector:     []float32{0.1, 0.2, 0.3},
	}

	if err := repo.PutVectors(ctx, vector); err != nil {
		t.Fatalf("Failed to put vector: %v", err)
	}

	if vector.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}

	retrieved, err := repo.GetVector(ctx, core.ID(1))
	if err != nil {
		t.Fatalf("Failed to get vector: %v", err)
	}

	if retrieved.RecordID != "co8084947" {
		t.Fatalf("Expected 'co8084947', got '%s'", retrieved.RecordID)
	}
	if retrieved.Modality != core.ModalityText {
		t.Fatalf("Expected text modality, got '%s'", retrieved.Modality)
	}
	if len(retrieved.Vector) != 3 {
		t.Fatalf("Expected 3 components, got %d", len(retrieved.Vector))
	}
}

func TestGetVector_NotFound(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	_, err = repo.GetVector(context.Background(), core.ID(404))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetVectors_SkipsMissing(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	err = repo.PutVectors(ctx,
		&core.CachedVector{Id: 1, Collection: "smg", RecordID: "a", Modality: core.ModalityText, Vector: []float32{1}},
		&core.CachedVector{Id: 3, Collection: "smg", RecordID: "c", Modality: core.ModalityImage, Vector: []float32{3}},
	)
	if err != nil {
		t.Fatalf("Failed to put vectors: %v", err)
	}

	vectors, err := repo.GetVectors(ctx, core.ID(1), core.ID(2), core.ID(3))
	if err != nil {
		t.Fatalf("Failed to get vectors: %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("Expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0].RecordID != "a" || vectors[1].RecordID != "c" {
		t.Fatalf("Expected input order preserved, got %s, %s", vectors[0].RecordID, vectors[1].RecordID)
	}
}

func TestPutVectors_Overwrite(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	first := &core.CachedVector{Id: 5, Collection: "bt", RecordID: "r", Modality: core.ModalityText, Vector: []float32{1, 1}}
	if err := repo.PutVectors(ctx, first); err != nil {
		t.Fatalf("Failed to put vector: %v", err)
	}

	second := &core.CachedVector{Id: 5, Collection: "bt", RecordID: "r", Modality: core.ModalityText, Vector: []float32{2, 2}}
	if err := repo.PutVectors(ctx, second); err != nil {
		t.Fatalf("Failed to overwrite vector: %v", err)
	}

	retrieved, err := repo.GetVector(ctx, core.ID(5))
	if err != nil {
		t.Fatalf("Failed to get vector: %v", err)
	}
	if retrieved.Vector[0] != 2 {
		t.Fatalf("Expected overwritten vector, got %v", retrieved.Vector)
	}
}

func TestCountVectors(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	err = repo.PutVectors(ctx,
		&core.CachedVector{Id: 1, Collection: "smg", RecordID: "a", Modality: core.ModalityText, Vector: []float32{1}},
		&core.CachedVector{Id: 2, Collection: "smg", RecordID: "a", Modality: core.ModalityImage, Vector: []float32{1}},
		&core.CachedVector{Id: 3, Collection: "nms", RecordID: "b", Modality: core.ModalityText, Vector: []float32{1}},
	)
	if err != nil {
		t.Fatalf("Failed to put vectors: %v", err)
	}

	total, err := repo.CountVectors(ctx, "")
	if err != nil {
		t.Fatalf("Failed to count vectors: %v", err)
	}
	if total != 3 {
		t.Fatalf("Expected 3 vectors, got %d", total)
	}

	smg, err := repo.CountVectors(ctx, "smg")
	if err != nil {
		t.Fatalf("Failed to count smg vectors: %v", err)
	}
	if smg != 2 {
		t.Fatalf("Expected 2 smg vectors, got %d", smg)
	}
}

func TestVectorRepository_Closed(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	repo.Close()
	backend.Close()

	_, err = repo.GetVector(context.Background(), core.ID(1))
	if !errors.Is(err, storage.ErrStorageClosed) {
		t.Fatalf("Expected ErrStorageClosed, got %v", err)
	}
}
