package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/tessera/catalogue"
	"github.com/poiesic/tessera/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testArchive implements source.ImageArchive against an httptest server.
type testArchive struct {
	baseURL string
}

func (a *testArchive) Name() string                { return "test" }
func (a *testArchive) ImageURL(loc string) string  { return a.baseURL + "/" + loc }
func (a *testArchive) LocalName(loc string) string { return strings.ReplaceAll(loc, "/", "|") }
func (a *testArchive) Fetchable(loc string) bool   { return loc != "" && !strings.HasPrefix(loc, "internal:") }
func (a *testArchive) DelayRange() (time.Duration, time.Duration) {
	return 0, 0
}

func newTestFetcher(t *testing.T, baseURL string) *Fetcher {
	t.Helper()
	f, err := NewFetcher(&testArchive{baseURL: baseURL})
	require.NoError(t, err)
	return f
}

// pendingCollection builds a collection with one undownloaded record per
// image location.
func pendingCollection(t *testing.T, locs ...string) *catalogue.Collection {
	t.Helper()
	col, err := catalogue.NewCollection("test", filepath.Join(t.TempDir(), "imgs"))
	require.NoError(t, err)

	archive := &testArchive{}
	records := make([]core.Record, len(locs))
	for i, loc := range locs {
		name := archive.LocalName(loc)
		records[i] = core.Record{
			RecordID:    loc,
			Description: "a record",
			ImgLoc:      loc,
			ImgName:     name,
			ImgPath:     filepath.Join(col.ImageDir(), name),
		}
	}
	col.SetRecords(records)
	return col
}

func readCacheFile(t *testing.T, col *catalogue.Collection, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(col.ImageDir(), name))
	require.NoError(t, err)
	return data
}

func TestFetchBatchBound(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("jpegbytes"))
	}))
	defer server.Close()

	col := pendingCollection(t, "a/1.jpg", "a/2.jpg", "a/3.jpg", "a/4.jpg", "a/5.jpg")
	f := newTestFetcher(t, server.URL)

	stats, err := f.Fetch(context.Background(), col, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
	assert.Equal(t, 2, stats.Attempted)
	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 3, stats.Remaining)

	undownloaded := 0
	for _, record := range col.Records() {
		if !record.Downloaded {
			undownloaded++
		}
	}
	assert.Equal(t, 3, undownloaded)
}

func TestFetchWritesBodyVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes-for-" + r.URL.Path))
	}))
	defer server.Close()

	col := pendingCollection(t, "a/1.jpg")
	f := newTestFetcher(t, server.URL)

	stats, err := f.Fetch(context.Background(), col, 0)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Fetched)

	data := readCacheFile(t, col, "a|1.jpg")
	assert.Equal(t, "image-bytes-for-/a/1.jpg", string(data))
	assert.True(t, col.Records()[0].Downloaded)
}

func TestFetchSkipsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("jpegbytes"))
	}))
	defer server.Close()

	col := pendingCollection(t, "a/ok.jpg", "a/missing.jpg")
	f := newTestFetcher(t, server.URL)

	stats, err := f.Fetch(context.Background(), col, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Attempted)
	assert.Equal(t, 1, stats.Fetched)
	assert.Equal(t, 1, stats.Remaining)
	assert.True(t, col.Records()[0].Downloaded)
	assert.False(t, col.Records()[1].Downloaded)
}

func TestFetchIsIdempotent(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("jpegbytes"))
	}))
	defer server.Close()

	col := pendingCollection(t, "a/1.jpg", "a/2.jpg")
	f := newTestFetcher(t, server.URL)

	_, err := f.Fetch(context.Background(), col, 0)
	require.NoError(t, err)
	require.Equal(t, 2, requests)

	// Everything is cached now; a second run performs no requests and
	// changes nothing.
	stats, err := f.Fetch(context.Background(), col, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	assert.Equal(t, 0, stats.Attempted)
	assert.Equal(t, 2, stats.Cached)
	assert.Equal(t, 0, stats.Remaining)
}

func TestFetchSkipsUnfetchableReferences(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("jpegbytes"))
	}))
	defer server.Close()

	col := pendingCollection(t, "a/1.jpg", "internal:ref")
	f := newTestFetcher(t, server.URL)

	stats, err := f.Fetch(context.Background(), col, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Equal(t, 1, stats.Fetched)
}

func TestNewFetcher(t *testing.T) {
	t.Run("requires an archive", func(t *testing.T) {
		_, err := NewFetcher(nil)
		assert.ErrorIs(t, err, ErrArchiveRequired)
	})

	t.Run("rejects a nil client", func(t *testing.T) {
		_, err := NewFetcher(&testArchive{}, WithHTTPClient(nil))
		assert.ErrorIs(t, err, ErrNilHTTPClient)
	})

	t.Run("rejects an inverted delay range", func(t *testing.T) {
		_, err := NewFetcher(&testArchive{}, WithDelayRange(time.Second, time.Millisecond))
		assert.ErrorIs(t, err, ErrInvalidDelayRange)
	})
}
