// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/markdave123-py/Specta/internal/config"
	"github.com/markdave123-py/Specta/internal/core"
	db "github.com/markdave123-py/Specta/internal/core/database"
	"github.com/markdave123-py/Specta/internal/core/ingestion_engine"
	"github.com/markdave123-py/Specta/internal/core/llm"
	objectclient "github.com/markdave123-py/Specta/internal/core/object-client"
)

type App struct {
	DBClient     *db.DatabaseClient
	ObjectClient *objectclient.S3Client
	DocProcessor ingestion_engine.Ingestor
	Server       *Server

	embedder *llm.GeminiEmbedder
	llm      *llm.GeminiLLM
	workers  int
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	// ctx, not appCtx: the clients outlive startup.
	geminiEmbedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		_ = dbClient.Close()
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		_ = geminiEmbedder.Close()
		_ = dbClient.Close()
		return nil, fmt.Errorf("couldn't initialize the llm, %w", err)
	}

	useReadability := false
	documentExtractor := ingestion_engine.NewRoutingExtractor(useReadability)

	ingCfg := &ingestion_engine.IngestConfig{
		ParseWorkers:    cfg.ParseWorkers,
		BatchSize:       cfg.RecordBatchSize,
		SectionOnly:     cfg.SectionOnly,
		EmbedParameters: cfg.EmbedParameters,
	}

	var emb core.EmbeddingProvider
	if cfg.EmbedParameters {
		emb = geminiEmbedder
	}
	docIngestor := ingestion_engine.NewDocumentIngestor(dbClient, objClient, emb, documentExtractor, ingCfg)

	server := NewServer(cfg, dbClient, objClient, docIngestor, geminiEmbedder, llmProvider)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		DocProcessor: docIngestor,
		Server:       server,
		embedder:     geminiEmbedder,
		llm:          llmProvider,
		workers:      cfg.IngestWorkers,
	}, nil
}

// Run starts the ingestion workers and serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	workers := a.workers
	if workers < 1 {
		workers = 1
	}
	a.DocProcessor.Start(ctx, workers)
	log.Printf("Ingestion started with %d workers.", workers)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.Server.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
