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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/tessera"
	"github.com/poiesic/tessera/ai"
	"github.com/poiesic/tessera/catalogue"
	"github.com/poiesic/tessera/core"
	"github.com/poiesic/tessera/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "tessera",
		Usage: "Build multimodal similarity indexes from museum catalogue exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"D"},
				Usage:   "Workspace directory for tables, images, vectors and indexes",
				Value:   "./data",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "normalize",
				Usage:     "Normalize institution exports into the canonical record table",
				ArgsUsage: "FILE [FILE...]",
				Action:    normalizeCommand,
				Flags: []cli.Flag{
					sourceFlag(),
				},
			},
			{
				Name:   "fetch",
				Usage:  "Download the images referenced by a record table",
				Action: fetchCommand,
				Flags: []cli.Flag{
					sourceFlag(),
					&cli.IntFlag{
						Name:    "max-images",
						Aliases: []string{"n"},
						Usage:   "Maximum images to fetch this run (0 = no limit)",
						Value:   0,
					},
				},
			},
			{
				Name:   "vectorize",
				Usage:  "Embed the filtered records of a table, filling the vector cache",
				Action: vectorizeCommand,
				Flags:  append([]cli.Flag{sourceFlag()}, encoderFlags()...),
			},
			{
				Name:   "export",
				Usage:  "Export a vectorized table to a similarity-search index",
				Action: exportCommand,
				Flags: append([]cli.Flag{
					sourceFlag(),
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Vector dimension of the encoder",
						Value: 512,
					},
				}, encoderFlags()...),
			},
			{
				Name:   "stats",
				Usage:  "Show table, image cache and vector cache counts",
				Action: statsCommand,
				Flags: []cli.Flag{
					sourceFlag(),
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func sourceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "source",
		Aliases:  []string{"s"},
		Usage:    "Institution name (smg, bt, nms)",
		Required: true,
	}
}

func encoderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:7997/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "clip-ViT-B-32",
		},
		&cli.StringFlag{
			Name:  "modality",
			Usage: "Comma-separated modalities to embed (text, image)",
			Value: "text,image",
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of records to encode per call",
			Value: 64,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N records",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum retry attempts for failed encoder calls",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
}

func tablePath(c *cli.Context) string {
	return filepath.Join(c.String("data-dir"), "tables", c.String("source")+".csv")
}

func normalizeCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one input file is required")
	}

	ws, err := tessera.NewWorkspace(c.String("data-dir"), tessera.WithInMemoryStorage())
	if err != nil {
		return fmt.Errorf("opening workspace: %w", err)
	}
	defer ws.Close()

	name := c.String("source")
	col, err := ws.NewCollection(name)
	if err != nil {
		return err
	}

	normalizer, err := ws.Registry().Normalizer(name)
	if err != nil {
		return err
	}

	if err := col.Load(context.Background(), normalizer, c.Args().Slice()...); err != nil {
		return fmt.Errorf("normalizing %s: %w", name, err)
	}

	path := tablePath(c)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := col.SaveCSV(path); err != nil {
		return fmt.Errorf("saving table: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Normalized %d records into %s\n", col.Len(), path)
	return nil
}

func fetchCommand(c *cli.Context) error {
	ws, err := tessera.NewWorkspace(c.String("data-dir"), tessera.WithInMemoryStorage())
	if err != nil {
		return fmt.Errorf("opening workspace: %w", err)
	}
	defer ws.Close()

	name := c.String("source")
	col, err := ws.NewCollection(name)
	if err != nil {
		return err
	}
	if err := col.LoadCSV(tablePath(c)); err != nil {
		return fmt.Errorf("loading table: %w", err)
	}

	fetcher, err := ws.NewFetcher(name)
	if err != nil {
		return err
	}

	stats, err := fetcher.Fetch(context.Background(), col, c.Int("max-images"))
	if err != nil {
		return fmt.Errorf("fetching images: %w", err)
	}

	if err := col.SaveCSV(tablePath(c)); err != nil {
		return fmt.Errorf("saving table: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Attempted %d, fetched %d, cached %d, remaining %d\n",
		stats.Attempted, stats.Fetched, stats.Cached, stats.Remaining)
	return nil
}

func vectorizeCommand(c *cli.Context) error {
	_, err := vectorizeTable(c)
	return err
}

func exportCommand(c *cli.Context) error {
	col, err := vectorizeTable(c)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	name := c.String("source")
	exporter, store, err := ws.NewIndexExporter(name, c.Int("dimension"))
	if err != nil {
		return err
	}
	defer store.Close()

	modalities, err := parseModalities(c.String("modality"))
	if err != nil {
		return err
	}

	written, err := exporter.Export(context.Background(), col, modalities...)
	if err != nil {
		return fmt.Errorf("exporting index: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", written, ws.IndexPath(name))
	return nil
}

func statsCommand(c *cli.Context) error {
	ws, err := tessera.NewWorkspace(c.String("data-dir"))
	if err != nil {
		return fmt.Errorf("opening workspace: %w", err)
	}
	defer ws.Close()

	name := c.String("source")
	col, err := ws.NewCollection(name)
	if err != nil {
		return err
	}
	if err := col.LoadCSV(tablePath(c)); err != nil {
		return fmt.Errorf("loading table: %w", err)
	}

	downloaded := 0
	withImage := 0
	for _, record := range col.Records() {
		if record.Downloaded {
			downloaded++
		}
		if record.HasImage() {
			withImage++
		}
	}

	cached, err := ws.VectorRepository().CountVectors(context.Background(), name)
	if err != nil {
		return fmt.Errorf("counting cached vectors: %w", err)
	}

	fmt.Printf("%s\n", col)
	fmt.Printf("  records with image reference: %d\n", withImage)
	fmt.Printf("  images downloaded:            %d\n", downloaded)
	fmt.Printf("  pending downloads:            %d\n", len(col.Pending()))
	fmt.Printf("  cached vectors:               %d\n", cached)
	return nil
}

// vectorizeTable loads the table, filters it and embeds the requested
// modalities, returning the vectorized collection.
func vectorizeTable(c *cli.Context) (*catalogue.Collection, error) {
	modalities, err := parseModalities(c.String("modality"))
	if err != nil {
		return nil, err
	}

	config := &pipeline.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return nil, fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return nil, fmt.Errorf("max-retries must be greater than 0")
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	name := c.String("source")
	col, err := ws.NewCollection(name)
	if err != nil {
		return nil, err
	}
	if err := col.LoadCSV(tablePath(c)); err != nil {
		return nil, fmt.Errorf("loading table: %w", err)
	}

	col.Filter()

	vectorizer, err := ws.NewVectorizer(config, os.Stderr)
	if err != nil {
		return nil, err
	}

	if err := vectorizer.Vectorize(context.Background(), col, modalities...); err != nil {
		return nil, fmt.Errorf("vectorizing %s: %w", name, err)
	}
	return col, nil
}

func openWorkspace(c *cli.Context) (*tessera.Workspace, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	ws, err := tessera.NewWorkspace(c.String("data-dir"), tessera.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}
	return ws, nil
}

func parseModalities(value string) ([]core.Modality, error) {
	var modalities []core.Modality
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		modality := core.Modality(part)
		if err := core.ValidateModality(modality); err != nil {
			return nil, fmt.Errorf("%w: %q", err, part)
		}
		modalities = append(modalities, modality)
	}
	if len(modalities) == 0 {
		return nil, fmt.Errorf("at least one modality is required")
	}
	return modalities, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
