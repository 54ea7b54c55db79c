package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/markdave123-py/Specta/internal/api/middlewares"
	"github.com/markdave123-py/Specta/internal/core/ingestion_engine"
	"github.com/markdave123-py/Specta/internal/export"
	"github.com/markdave123-py/Specta/internal/models"
	"github.com/markdave123-py/Specta/internal/services"
)

// maxUploadSize bounds the multipart form kept in memory.
const maxUploadSize = 32 << 20

type DocumentHandler struct {
	docs     *services.DocumentService
	ingestor ingestion_engine.Ingestor
}

func NewDocumentHandler(docs *services.DocumentService, ing ingestion_engine.Ingestor) *DocumentHandler {
	return &DocumentHandler{docs: docs, ingestor: ing}
}

// UploadDocument handles file upload, DB insert, and background processing.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	uploadctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	doc, err := h.docs.UploadAndCreate(uploadctx, userID, filepath.Base(header.Filename),
		header.Header.Get("Content-Type"), file, "upload")
	if err != nil {
		log.Printf("DocumentHandler: upload failed for user %s: %v", userID, err)
		http.Error(w, "failed to store document", http.StatusInternalServerError)
		return
	}

	h.ingestor.Enqueue(doc.ID)

	writeJSON(w, http.StatusAccepted, doc)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	documents, err := h.docs.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if documents == nil {
		documents = []models.Document{}
	}
	writeJSON(w, http.StatusOK, documents)
}

// GetRecords lists the parsed records of one document in page order.
func (h *DocumentHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	records, err := h.docs.Records(r.Context(), doc.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.SpecRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document": doc,
		"records":  records,
	})
}

// Export streams the document's records as CSV or JSON lines.
func (h *DocumentHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", attachment(doc.ID+"."+string(format)))
	if _, err := h.docs.Export(r.Context(), doc, format, w); err != nil {
		log.Printf("DocumentHandler: export of %s failed: %v", doc.ID, err)
		w.Header().Del("Content-Disposition")
		http.Error(w, "export failed", http.StatusInternalServerError)
	}
}

// Download streams the original uploaded file.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	rc, err := h.docs.Open(r.Context(), doc)
	if err != nil {
		log.Printf("DocumentHandler: open %s failed: %v", doc.ID, err)
		http.Error(w, "file unavailable", http.StatusBadGateway)
		return
	}
	defer rc.Close()

	if doc.ContentType != "" {
		w.Header().Set("Content-Type", doc.ContentType)
	}
	w.Header().Set("Content-Disposition", attachment(filepath.Base(doc.FileName)))
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("DocumentHandler: download of %s interrupted: %v", doc.ID, err)
	}
}

// attachment quotes or RFC 2231-encodes name as needed.
func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

func (h *DocumentHandler) ownedDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return nil, false
	}

	doc, err := h.docs.GetOwned(r.Context(), userID, chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrNotFound) {
		http.Error(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return doc, true
}
