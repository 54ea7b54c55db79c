package ingestion_engine

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Specta/internal/core"
	specparser "github.com/markdave123-py/Specta/internal/core/spec-parser"
)

// ParseOptions controls how pages are turned into records.
type ParseOptions struct {
	Workers     int
	SectionOnly bool
}

// ParseDocument identifies the model over the full text, then parses pages
// concurrently. Records come back in page order.
func ParseDocument(ctx context.Context, pages []core.Page, opts ParseOptions) (string, []specparser.Record, error) {
	texts := make([]string, len(pages))
	for k, p := range pages {
		texts[k] = p.Text
	}
	modelID := specparser.IdentifyModel(strings.Join(texts, "\n"))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([][]specparser.Record, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	idx := make(chan int)

	g.Go(func() error {
		defer close(idx)
		for k := range pages {
			select {
			case idx <- k:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for k := range idx {
				results[k] = parsePage(pages[k], modelID, opts.SectionOnly)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return modelID, nil, err
	}

	var n int
	for _, rs := range results {
		n += len(rs)
	}
	records := make([]specparser.Record, 0, n)
	for _, rs := range results {
		records = append(records, rs...)
	}
	return modelID, records, nil
}

func parsePage(p core.Page, modelID string, sectionOnly bool) []specparser.Record {
	if sectionOnly {
		if records, ok := specparser.ParseSpecificationBlock(p.Text, p.Index, modelID); ok {
			return records
		}
	}
	return specparser.ParsePage(p.Text, p.Index, modelID)
}

// streamRecords emits the parsed records of a document in order.
//
// pages:    extracted pages of one document.
// modelID:  receives the identified model once parsing finished.
// out:      receive-only channel of records; closed when the document is done.
func (i *DocumentIngestor) streamRecords(
	ctx context.Context,
	g *errgroup.Group,
	pages []core.Page,
	modelID *string,
) <-chan specparser.Record {
	out := make(chan specparser.Record, 32)

	g.Go(func() error {
		defer close(out)

		id, records, err := ParseDocument(ctx, pages, ParseOptions{
			Workers:     i.cfg.parseWorkers(),
			SectionOnly: i.cfg != nil && i.cfg.SectionOnly,
		})
		if err != nil {
			return err
		}
		*modelID = id

		for _, r := range records {
			// Emit the record downstream; backpressure applies here.
			select {
			case out <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return out
}
