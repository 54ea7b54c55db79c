package ingestion_engine

import (
	"context"
	"fmt"
	"log"

	specparser "github.com/markdave123-py/Specta/internal/core/spec-parser"
	"github.com/markdave123-py/Specta/internal/models"
)

// persistRecords consumes records, optionally embeds their labels, and writes
// them to the DB in batches.
//
// doc:        document the records belong to.
// in:         record stream from streamRecords.
// batchSize:  number of records to embed/write per batch (limits memory).
func (i *DocumentIngestor) persistRecords(
	ctx context.Context,
	doc *models.Document,
	in <-chan specparser.Record,
	batchSize int,
) (int, error) {
	batch := make([]models.SpecRecord, 0, batchSize)
	pos := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		i.embedLabels(ctx, batch)
		if err := i.db.InsertSpecRecords(ctx, batch); err != nil {
			return fmt.Errorf("insert records: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for r := range in {
		batch = append(batch, models.NewSpecRecord(doc.ID, doc.FileName, pos, r))
		pos++
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return pos, err
			}
		}
	}
	// Final tail.
	if err := flush(); err != nil {
		return pos, err
	}
	return pos, nil
}

// embedLabels attaches one embedding per distinct parameter label. Failures
// leave the batch unembedded; records stay searchable by exact parameter.
func (i *DocumentIngestor) embedLabels(ctx context.Context, batch []models.SpecRecord) {
	if i.embedder == nil || i.cfg == nil || !i.cfg.EmbedParameters {
		return
	}

	index := make(map[string]int)
	var labels []string
	for _, r := range batch {
		if _, ok := index[r.Parameter]; !ok {
			index[r.Parameter] = len(labels)
			labels = append(labels, r.Parameter)
		}
	}

	vecs, err := i.embedder.EmbedTexts(ctx, labels)
	if err != nil {
		log.Printf("DocumentIngestor: embedding skipped for %d labels: %v", len(labels), err)
		return
	}
	if len(vecs) != len(labels) {
		log.Printf("DocumentIngestor: embed size mismatch: got %d want %d", len(vecs), len(labels))
		return
	}
	for k := range batch {
		batch[k].Embedding = vecs[index[batch[k].Parameter]]
	}
}
