package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("PF1234")
		id2 := IDFromContent("PF1234")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content produces different IDs", func(t *testing.T) {
		id1 := IDFromContent("PF1234")
		id2 := IDFromContent("PF1235")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content is valid", func(t *testing.T) {
		// Still deterministic, just hashing the empty string
		assert.Equal(t, IDFromContent(""), IDFromContent(""))
	})
}

func TestRecordVector(t *testing.T) {
	record := &Record{RecordID: "co123"}

	require.NoError(t, record.SetVector(ModalityText, []float32{0.1, 0.2}))
	require.NoError(t, record.SetVector(ModalityImage, []float32{0.3, 0.4}))

	assert.Equal(t, []float32{0.1, 0.2}, record.Vector(ModalityText))
	assert.Equal(t, []float32{0.3, 0.4}, record.Vector(ModalityImage))
	assert.Nil(t, record.Vector(Modality("audio")))
}

func TestRecordSetVector_InvalidModality(t *testing.T) {
	record := &Record{RecordID: "co123"}

	err := record.SetVector(Modality("audio"), []float32{0.1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidModality)
	assert.Nil(t, record.TextVector)
	assert.Nil(t, record.ImageVector)
}

func TestRecordEmbeddingInput(t *testing.T) {
	record := &Record{
		RecordID:    "co123",
		Description: "A Clock; With Gears",
		ImgPath:     "imgs/clock.jpg",
	}

	assert.Equal(t, "a clock; with gears", record.EmbeddingInput(ModalityText))
	assert.Equal(t, "imgs/clock.jpg", record.EmbeddingInput(ModalityImage))
	assert.Equal(t, "", record.EmbeddingInput(Modality("audio")))
}

func TestRecordCacheID(t *testing.T) {
	record := &Record{RecordID: "co123", Description: "a clock", ImgPath: "imgs/a.jpg"}

	t.Run("stable per modality", func(t *testing.T) {
		assert.Equal(t, record.CacheID("smg", ModalityText), record.CacheID("smg", ModalityText))
		assert.NotEqual(t, record.CacheID("smg", ModalityText), record.CacheID("smg", ModalityImage))
	})

	t.Run("collection participates in the key", func(t *testing.T) {
		assert.NotEqual(t, record.CacheID("smg", ModalityText), record.CacheID("nms", ModalityText))
	})

	t.Run("content change invalidates the key", func(t *testing.T) {
		before := record.CacheID("smg", ModalityText)
		changed := *record
		changed.Description = "a watch"
		assert.NotEqual(t, before, changed.CacheID("smg", ModalityText))
	})
}

func TestRecordHasImage(t *testing.T) {
	assert.False(t, (&Record{}).HasImage())
	assert.True(t, (&Record{ImgLoc: "images/a/b.jpg"}).HasImage())
}
