// Package batch runs the extractor over a folder of datasheets and writes
// per-document artifacts plus one combined CSV.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"code.sajari.com/docconv"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Specta/internal/core"
	"github.com/markdave123-py/Specta/internal/core/ingestion_engine"
	specparser "github.com/markdave123-py/Specta/internal/core/spec-parser"
	"github.com/markdave123-py/Specta/internal/export"
	"github.com/markdave123-py/Specta/internal/models"
)

// CombinedFile is written at the root of the output folder.
const CombinedFile = "combined_records.csv"

var supported = map[string]bool{
	".pdf": true, ".txt": true, ".doc": true, ".docx": true, ".odt": true,
	".rtf": true, ".html": true, ".htm": true, ".xml": true, ".pages": true,
}

type Options struct {
	InputDir     string
	OutputDir    string
	Workers      int // documents in flight
	ParseWorkers int // page parsers per document
	SectionOnly  bool
	Extractor    core.PageExtractor
}

// Summary reports what a run produced.
type Summary struct {
	Documents int
	Records   int
	Failed    []string
}

type result struct {
	rows []models.SpecRecord
	err  error
}

// Run processes every supported file under opts.InputDir. A file that fails
// is logged and reported in Summary.Failed; the rest of the run continues.
func Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	if opts.Extractor == nil {
		opts.Extractor = ingestion_engine.NewRoutingExtractor(false)
	}

	files, err := collect(opts.InputDir)
	if err != nil {
		return sum, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return sum, fmt.Errorf("create output dir: %w", err)
	}

	bases := outputNames(files)
	results := make([]result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for k, path := range files {
		g.Go(func() error {
			rows, err := processFile(gctx, opts, path, bases[k])
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Printf("batch: %s failed: %v", path, err)
			} else {
				log.Printf("batch: %s -> %d records", path, len(rows))
			}
			results[k] = result{rows: rows, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}

	var combined []models.SpecRecord
	for k, res := range results {
		if res.err != nil {
			sum.Failed = append(sum.Failed, files[k])
			continue
		}
		sum.Documents++
		combined = append(combined, res.rows...)
	}
	for k := range combined {
		combined[k].Position = k
	}
	sum.Records = len(combined)

	if err := writeFile(filepath.Join(opts.OutputDir, CombinedFile), func(f *os.File) error {
		return export.WriteCSV(f, combined)
	}); err != nil {
		return sum, err
	}
	return sum, nil
}

func collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && supported[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// outputNames derives one folder name per file from its base name; repeated
// names get a numeric suffix.
func outputNames(files []string) []string {
	seen := make(map[string]int)
	out := make([]string, len(files))
	for k, path := range files {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		seen[base]++
		if n := seen[base]; n > 1 {
			base = fmt.Sprintf("%s_%d", base, n)
		}
		out[k] = base
	}
	return out
}

func processFile(ctx context.Context, opts Options, path, base string) ([]models.SpecRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pages, err := opts.Extractor.ExtractPages(ctx, data, contentTypeFor(path))
	if err != nil {
		return nil, err
	}

	_, records, err := ingestion_engine.ParseDocument(ctx, pages, ingestion_engine.ParseOptions{
		Workers:     opts.ParseWorkers,
		SectionOnly: opts.SectionOnly,
	})
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(opts.OutputDir, base)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	texts := make([]string, len(pages))
	for k, p := range pages {
		texts[k] = p.Text
	}
	if err := os.WriteFile(filepath.Join(dir, base+".txt"), []byte(strings.Join(texts, "\f")), 0o644); err != nil {
		return nil, err
	}

	sections, err := json.MarshalIndent(specparser.SectionMap(records), "", "    ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, base+"_sections.json"), sections, 0o644); err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	rows := make([]models.SpecRecord, len(records))
	for k, r := range records {
		rows[k] = models.NewSpecRecord("", source, k, r)
	}
	if err := writeFile(filepath.Join(dir, base+"_records.jsonl"), func(f *os.File) error {
		return export.WriteJSONL(f, rows)
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

func contentTypeFor(path string) string {
	ct := docconv.MimeTypeByExtension(path)
	if ct == "application/octet-stream" {
		if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
			ct = t
		}
	}
	return ct
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
