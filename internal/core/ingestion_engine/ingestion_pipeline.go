package ingestion_engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Specta/internal/core"
	objectclient "github.com/markdave123-py/Specta/internal/core/object-client"
	"github.com/markdave123-py/Specta/internal/models"
)

// NewDocumentIngestor constructs the ingestor with a bounded job queue (64).
// emb may be nil when label embedding is disabled.
func NewDocumentIngestor(db core.DbClient, obj core.ObjectClient, emb core.EmbeddingProvider, extractor core.PageExtractor, cfg *IngestConfig) *DocumentIngestor {
	return &DocumentIngestor{
		db: db, obj: obj, embedder: emb, extractor: extractor, cfg: cfg,
		jobs: make(chan string, 64),
	}
}

// Start runs numWorkers goroutines reading from the jobs channel.
// Each orchestrates extract, parse and persist for one document at a time.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Println("DocumentIngestor: Worker shutting down.")
					return
				case docID := <-i.jobs:
					log.Printf("DocumentIngestor: Processing document %s by worker with ID %d", docID, w)

					if err := i.ProcessOne(ctx, docID); err != nil {
						log.Printf("DocumentIngestor: Error processing document %s: %v", docID, err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document ID for ingestion.
// If the queue is full, this call will block until space frees up.
func (i *DocumentIngestor) Enqueue(docID string) {
	i.jobs <- docID
}

// ProcessOne extracts, parses and persists a single document.
// Existing records of the document are replaced.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, docID string) error {
	proctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	doc, err := i.db.GetDocumentByID(proctx, docID)
	if err != nil {
		return fmt.Errorf("get document %s: %w", docID, err)
	}
	if doc == nil {
		return fmt.Errorf("document not found: %s", docID)
	}

	if err := i.db.UpdateDocumentStatus(proctx, docID, models.StatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	if err := i.run(proctx, doc); err != nil {
		// Status update uses the parent ctx so a timed-out run is still recorded.
		_ = i.db.UpdateDocumentStatus(ctx, docID, models.StatusFailed)
		return err
	}

	// Success.
	return i.db.UpdateDocumentStatus(ctx, docID, models.StatusReady)
}

func (i *DocumentIngestor) run(ctx context.Context, doc *models.Document) error {
	bucket, key := objectclient.ParseS3URL(doc.StorageURL)

	data, err := i.obj.GetFile(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("get object: %w", err)
	}

	pages, err := i.extractor.ExtractPages(ctx, data, doc.ContentType)
	if err != nil {
		return fmt.Errorf("extract pages: %w", err)
	}
	if len(pages) == 0 {
		log.Printf("DocumentIngestor: document %s has no extractable text", doc.ID)
	}

	if err := i.db.DeleteSpecRecords(ctx, doc.ID); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	// Build an errgroup to tie the pipeline stages together.
	g, gctx := errgroup.WithContext(ctx)

	// pages -> records (receive-only channel).
	var modelID string
	recCh := i.streamRecords(gctx, g, pages, &modelID)

	// records -> embed + persist.
	var count int
	g.Go(func() error {
		n, err := i.persistRecords(gctx, doc, recCh, i.cfg.batchSize())
		count = n
		return err
	})

	// Wait for all stages. Any error cancels the rest.
	if err := g.Wait(); err != nil {
		return err
	}

	if err := i.db.SetDocumentModel(ctx, doc.ID, modelID, len(pages)); err != nil {
		return fmt.Errorf("set model: %w", err)
	}
	log.Printf("DocumentIngestor: document %s model=%s pages=%d records=%d", doc.ID, modelID, len(pages), count)
	return nil
}
