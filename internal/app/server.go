package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/Specta/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Specta/internal/api/middlewares"
	"github.com/markdave123-py/Specta/internal/config"
	"github.com/markdave123-py/Specta/internal/core"
	ingestor "github.com/markdave123-py/Specta/internal/core/ingestion_engine"
	"github.com/markdave123-py/Specta/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, ing ingestor.Ingestor, emb core.EmbeddingProvider, llm core.LLMProvider) *Server {
	return &Server{httpServer: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, db, obj, ing, emb, llm),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// NewRouter returns the API routes.
func NewRouter(cfg *config.Config, db core.DbClient, obj core.ObjectClient, ing ingestor.Ingestor, emb core.EmbeddingProvider, llm core.LLMProvider) http.Handler {
	docs := services.NewDocumentService(db, obj, cfg.BucketName)

	authHandler := handlers.NewAuthHandler(services.NewUserService(db), cfg.JWTSecret)
	docHandler := handlers.NewDocumentHandler(docs, ing)
	recordHandler := handlers.NewRecordHandler(services.NewRecordService(db, emb))
	chatHandler := handlers.NewChatHandler(docs, llm)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// API routes
	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
			protected.Post("/documents/upload", docHandler.UploadDocument)
			protected.Get("/documents", docHandler.GetDocuments)
			protected.Get("/documents/{id}/records", docHandler.GetRecords)
			protected.Get("/documents/{id}/export", docHandler.Export)
			protected.Get("/documents/{id}/file", docHandler.Download)

			protected.Get("/records/search", recordHandler.Search)
			protected.Get("/records", recordHandler.ByParameter)

			protected.Post("/chat/query", chatHandler.QueryDocument)
		})
	})

	return r
}

// Start runs the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
