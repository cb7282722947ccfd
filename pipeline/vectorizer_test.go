package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/tessera/ai"
	"github.com/poiesic/tessera/ai/mock"
	"github.com/poiesic/tessera/catalogue"
	"github.com/poiesic/tessera/core"
	badgerstore "github.com/poiesic/tessera/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollection(t *testing.T, records []core.Record) *catalogue.Collection {
	t.Helper()
	col, err := catalogue.NewCollection("test", t.TempDir())
	require.NoError(t, err)
	col.SetRecords(records)
	return col
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return path
}

func TestVectorize_InvalidModality(t *testing.T) {
	provider := mock.NewMockProvider()
	v, err := NewVectorizer(provider, nil, nil, io.Discard)
	require.NoError(t, err)

	col := newTestCollection(t, []core.Record{
		{RecordID: "a", Description: "a brass clock"},
	})

	err = v.Vectorize(context.Background(), col, core.ModalityText, core.Modality("audio"))
	require.ErrorIs(t, err, core.ErrInvalidModality)

	// Validation happens up front, so no record was touched.
	assert.Nil(t, col.Records()[0].TextVector)
	assert.Equal(t, 0, provider.GetMockEmbedder().TextCalls())
}

func TestVectorize_Text(t *testing.T) {
	provider := mock.NewMockProvider()
	v, err := NewVectorizer(provider, nil, nil, io.Discard)
	require.NoError(t, err)

	col := newTestCollection(t, []core.Record{
		{RecordID: "a", Description: "A brass mantel clock"},
		{RecordID: "b", Description: ""},
		{RecordID: "c", Description: "Telegraph insulator"},
	})

	require.NoError(t, v.Vectorize(context.Background(), col, core.ModalityText))

	records := col.Records()
	assert.NotNil(t, records[0].TextVector)
	assert.Nil(t, records[1].TextVector, "empty description should be skipped")
	assert.NotNil(t, records[2].TextVector)
	assert.Nil(t, records[0].ImageVector, "image modality untouched")

	var magnitude float64
	for _, val := range records[0].TextVector {
		magnitude += float64(val) * float64(val)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-5, "attached vectors are unit-normalized")
}

func TestVectorize_TextBatches(t *testing.T) {
	provider := mock.NewMockProvider()
	config := DefaultConfig()
	config.BatchSize = 2
	v, err := NewVectorizer(provider, nil, config, io.Discard)
	require.NoError(t, err)

	records := make([]core.Record, 5)
	for i := range records {
		records[i] = core.Record{RecordID: string(rune('a' + i)), Description: "item"}
	}
	col := newTestCollection(t, records)

	require.NoError(t, v.Vectorize(context.Background(), col, core.ModalityText))
	assert.Equal(t, 3, provider.GetMockEmbedder().TextCalls(), "5 records at batch size 2 is 3 calls")
}

func TestVectorize_Image(t *testing.T) {
	provider := mock.NewMockProvider()
	v, err := NewVectorizer(provider, nil, nil, io.Discard)
	require.NoError(t, err)

	dir := t.TempDir()
	good := writePNG(t, dir, "good.png")
	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))

	col := newTestCollection(t, []core.Record{
		{RecordID: "a", ImgLoc: "loc/a", ImgName: "good.png", ImgPath: good, Downloaded: true},
		{RecordID: "b", ImgLoc: "loc/b", ImgName: "bad.jpg", ImgPath: bad, Downloaded: true},
		{RecordID: "c", ImgLoc: "loc/c", ImgName: "missing.jpg", ImgPath: filepath.Join(dir, "missing.jpg"), Downloaded: false},
	})

	require.NoError(t, v.Vectorize(context.Background(), col, core.ModalityImage))

	records := col.Records()
	assert.NotNil(t, records[0].ImageVector)
	assert.Nil(t, records[1].ImageVector, "undecodable image should be skipped")
	assert.Nil(t, records[2].ImageVector, "undownloaded image should be skipped")
}

func TestVectorize_CacheResume(t *testing.T) {
	cache, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { cache.Close(); backend.Close() }()

	provider := mock.NewMockProvider()
	v, err := NewVectorizer(provider, cache, nil, io.Discard)
	require.NoError(t, err)

	records := []core.Record{
		{RecordID: "a", Description: "a brass clock"},
		{RecordID: "b", Description: "a telegraph key"},
	}

	col := newTestCollection(t, records)
	require.NoError(t, v.Vectorize(context.Background(), col, core.ModalityText))
	firstVector := col.Records()[0].TextVector
	require.NotNil(t, firstVector)
	require.Equal(t, 1, provider.GetMockEmbedder().TextCalls())

	// A fresh run over the same content is served entirely from cache.
	col2 := newTestCollection(t, records)
	require.NoError(t, v.Vectorize(context.Background(), col2, core.ModalityText))
	assert.Equal(t, 1, provider.GetMockEmbedder().TextCalls(), "no new encoder calls")
	assert.Equal(t, firstVector, col2.Records()[0].TextVector)

	// Editing the description invalidates that record's cache entry.
	records[0].Description = "a silver clock"
	col3 := newTestCollection(t, records)
	require.NoError(t, v.Vectorize(context.Background(), col3, core.ModalityText))
	assert.Equal(t, 2, provider.GetMockEmbedder().TextCalls(), "changed content is re-encoded")
}

// failingProvider errors on encoder initialization.
type failingProvider struct{}

func (failingProvider) Embedder() (ai.Embedder, error) {
	return nil, errors.New("encoder unavailable")
}
func (failingProvider) Close() error { return nil }

func TestVectorize_LazyEncoder(t *testing.T) {
	v, err := NewVectorizer(failingProvider{}, nil, nil, io.Discard)
	require.NoError(t, err)

	col := newTestCollection(t, []core.Record{
		{RecordID: "a", Description: ""},
	})

	// Nothing eligible, so the encoder is never initialized.
	assert.NoError(t, v.Vectorize(context.Background(), col, core.ModalityText))
}

func TestVectorize_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}
	provider := mock.NewMockProviderWithEmbedder(embedder)

	config := DefaultConfig()
	config.MaxRetries = 1
	v, err := NewVectorizer(provider, nil, config, io.Discard)
	require.NoError(t, err)

	col := newTestCollection(t, []core.Record{
		{RecordID: "a", Description: "one"},
		{RecordID: "b", Description: "two"},
	})

	err = v.Vectorize(context.Background(), col, core.ModalityText)
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestNewVectorizer_RequiresProvider(t *testing.T) {
	_, err := NewVectorizer(nil, nil, nil, io.Discard)
	assert.ErrorIs(t, err, ErrProviderRequired)
}
