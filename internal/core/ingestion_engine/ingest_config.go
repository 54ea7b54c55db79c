package ingestion_engine

import (
	"github.com/markdave123-py/Specta/internal/core"
)

// IngestConfig tunes the ingestion pipeline.
//
// ParseWorkers:    goroutines parsing pages of one document concurrently.
// BatchSize:       how many records to embed/write in one batch (e.g., 64).
// SectionOnly:     parse only the "technical specifications" block when a page has one.
// EmbedParameters: embed parameter labels for semantic search (needs an embedder).
type IngestConfig struct {
	ParseWorkers    int
	BatchSize       int
	SectionOnly     bool
	EmbedParameters bool
}

func (c *IngestConfig) parseWorkers() int {
	if c == nil || c.ParseWorkers < 1 {
		return 1
	}
	return c.ParseWorkers
}

func (c *IngestConfig) batchSize() int {
	if c == nil || c.BatchSize < 1 {
		return 64
	}
	return c.BatchSize
}

// DocumentIngestor orchestrates the background ingestion pipeline:
//
// db:        persistence for documents and spec records.
// obj:       object storage holding the uploaded datasheets.
// embedder:  optional embedding provider for parameter labels.
// extractor: turns document bytes into page text.
// cfg:       runtime tuning knobs for the pipeline.
// jobs:      in-memory queue of document IDs to process.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	embedder  core.EmbeddingProvider
	extractor core.PageExtractor
	cfg       *IngestConfig
	jobs      chan string
}
