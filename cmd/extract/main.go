// Command extract parses every datasheet in a folder and writes per-document
// text, sections and records, plus a combined CSV.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/markdave123-py/Specta/internal/batch"
	"github.com/markdave123-py/Specta/internal/config"
	"github.com/markdave123-py/Specta/internal/core/ingestion_engine"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	in := flag.String("in", "datasheets", "folder containing datasheets")
	out := flag.String("out", "extracted", "output folder")
	workers := flag.Int("workers", cfg.IngestWorkers, "documents processed concurrently")
	parseWorkers := flag.Int("parse-workers", cfg.ParseWorkers, "page parsers per document")
	sectionOnly := flag.Bool("section-only", cfg.SectionOnly, "parse only the technical specifications block when present")
	readability := flag.Bool("readability", false, "use readability when converting HTML")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := batch.Run(ctx, batch.Options{
		InputDir:     *in,
		OutputDir:    *out,
		Workers:      *workers,
		ParseWorkers: *parseWorkers,
		SectionOnly:  *sectionOnly,
		Extractor:    ingestion_engine.NewRoutingExtractor(*readability),
	})
	if err != nil {
		log.Fatalf("extract: %v", err)
	}

	log.Printf("extract: %d documents, %d records, %d failed", sum.Documents, sum.Records, len(sum.Failed))
	if len(sum.Failed) > 0 {
		os.Exit(1)
	}
}
