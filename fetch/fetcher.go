// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/poiesic/tessera/catalogue"
	"github.com/poiesic/tessera/source"
)

const defaultRequestTimeout = 30 * time.Second

// Fetcher downloads pending images for one collection from its archive.
type Fetcher struct {
	archive  source.ImageArchive
	client   *http.Client
	limiter  *rate.Limiter
	delayMin time.Duration
	delayMax time.Duration
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithHTTPClient sets a custom HTTP client.
// Default is a client with a 30s request timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) error {
		if client == nil {
			return ErrNilHTTPClient
		}
		f.client = client
		return nil
	}
}

// WithDelayRange overrides the archive's politeness delay bounds.
// A zero range disables the inter-request sleep (tests only).
func WithDelayRange(min, max time.Duration) Option {
	return func(f *Fetcher) error {
		if min < 0 || max < min {
			return ErrInvalidDelayRange
		}
		f.delayMin = min
		f.delayMax = max
		return nil
	}
}

// WithLimiter sets a custom rate limiter.
// Default allows one request per minimum delay.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(f *Fetcher) error {
		f.limiter = limiter
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a fetcher for the given image archive.
func NewFetcher(archive source.ImageArchive, opts ...Option) (*Fetcher, error) {
	if archive == nil {
		return nil, ErrArchiveRequired
	}

	min, max := archive.DelayRange()
	f := &Fetcher{
		archive:  archive,
		client:   &http.Client{Timeout: defaultRequestTimeout},
		delayMin: min,
		delayMax: max,
		logger:   slog.Default().With("component", "fetcher", "archive", archive.Name()),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	if f.limiter == nil {
		// rate.Every(0) yields an infinite limit, which is what a zero
		// delay range asks for.
		f.limiter = rate.NewLimiter(rate.Every(f.delayMin), 1)
	}
	return f, nil
}

// Stats summarizes one fetch batch.
type Stats struct {
	Attempted int // HTTP requests performed
	Fetched   int // images written to the cache
	Cached    int // files in the cache after the batch
	Remaining int // rows still pending after the batch
}

// Fetch downloads at most maxImages pending images for the collection.
// maxImages <= 0 means no bound. After the batch the cache directory is
// rescanned and every record's Downloaded flag is refreshed from it.
func (f *Fetcher) Fetch(ctx context.Context, col *catalogue.Collection, maxImages int) (Stats, error) {
	var stats Stats

	pending := f.fetchable(col)
	f.logger.Info("pending images", "pending", len(pending), "max", maxImages)

	if maxImages > 0 && len(pending) > maxImages {
		pending = pending[:maxImages]
	}

	records := col.Records()
	for _, idx := range pending {
		if err := f.limiter.Wait(ctx); err != nil {
			return stats, err
		}

		loc := records[idx].ImgLoc
		stats.Attempted++
		ok, err := f.fetchOne(ctx, col.ImageDir(), loc)
		if err != nil {
			return stats, err
		}
		if !ok {
			continue
		}
		stats.Fetched++

		if err := f.sleep(ctx); err != nil {
			return stats, err
		}
	}

	cached, err := col.ScanImages()
	if err != nil {
		return stats, err
	}
	col.RefreshDownloaded()

	stats.Cached = cached
	stats.Remaining = len(col.Pending())
	f.logger.Info("fetch batch complete",
		"attempted", stats.Attempted, "fetched", stats.Fetched,
		"cached", stats.Cached, "remaining", stats.Remaining)
	return stats, nil
}

// fetchable returns the pending row indexes the archive can actually serve.
func (f *Fetcher) fetchable(col *catalogue.Collection) []int {
	records := col.Records()
	var out []int
	for _, idx := range col.Pending() {
		if f.archive.Fetchable(records[idx].ImgLoc) {
			out = append(out, idx)
		}
	}
	return out
}

// fetchOne performs one GET and writes the body verbatim to the cache.
// A non-200 status or a transport error skips the image without failing
// the batch; only local filesystem problems are surfaced.
func (f *Fetcher) fetchOne(ctx context.Context, imgDir, loc string) (bool, error) {
	url := f.archive.ImageURL(loc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("building request for %q: %w", loc, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("request failed, skipping image", "loc", loc, "err", err)
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Debug("skipping image", "loc", loc, "status", resp.StatusCode)
		return false, nil
	}

	path := filepath.Join(imgDir, f.archive.LocalName(loc))
	file, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", path, err)
	}

	_, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		os.Remove(path) // don't leave truncated files in the cache
		f.logger.Warn("download interrupted, skipping image", "loc", loc, "err", copyErr)
		return false, nil
	}
	if closeErr != nil {
		return false, closeErr
	}

	f.logger.Debug("fetched image", "loc", loc, "path", path)
	return true, nil
}

// sleep waits a uniformly random duration inside the politeness range.
func (f *Fetcher) sleep(ctx context.Context) error {
	delay := f.delayMin
	if span := f.delayMax - f.delayMin; span > 0 {
		delay += time.Duration(rand.Int64N(int64(span)))
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
