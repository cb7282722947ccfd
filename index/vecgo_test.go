package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVecgoStore_AddAndSearch(t *testing.T) {
	store, err := NewVecgoStore(2, "")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	err = store.Add(ctx,
		Entry{ID: "a_text_0", Vector: []float32{1, 0}, Document: "a clock", Metadata: map[string]string{"collection": "smg"}},
		Entry{ID: "b_text_1", Vector: []float32{0, 1}, Document: "a key", Metadata: map[string]string{"collection": "smg"}},
	)
	require.NoError(t, err)

	results, err := store.KNNSearch(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a clock", results[0].Data)
}

func TestVecgoStore_FlushSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.vecgo")
	store, err := NewVecgoStore(2, path)
	require.NoError(t, err)
	defer store.Close()

	err = store.Add(context.Background(),
		Entry{ID: "a_text_0", Vector: []float32{1, 0}, Document: "a clock"},
	)
	require.NoError(t, err)
	require.NoError(t, store.Flush())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestNewVecgoStore_InvalidDimension(t *testing.T) {
	_, err := NewVecgoStore(0, "")
	assert.ErrorIs(t, err, ErrInvalidDimension)
}
