package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	appMiddleware "github.com/markdave123-py/Specta/internal/api/middlewares"
	"github.com/markdave123-py/Specta/internal/core"
	"github.com/markdave123-py/Specta/internal/core/llm"
	"github.com/markdave123-py/Specta/internal/models"
	"github.com/markdave123-py/Specta/internal/services"
)

type ChatHandler struct {
	docs *services.DocumentService
	llm  core.LLMProvider
}

func NewChatHandler(docs *services.DocumentService, llm core.LLMProvider) *ChatHandler {
	return &ChatHandler{docs: docs, llm: llm}
}

type ChatRequest struct {
	DocumentID string `json:"document_id"`
	Query      string `json:"query"`
}

// QueryDocument answers a question using the document's parsed records as context.
func (h *ChatHandler) QueryDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := appMiddleware.UserID(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	// Confirm document belongs to user
	doc, err := h.docs.GetOwned(ctx, userID, req.DocumentID)
	if errors.Is(err, services.ErrNotFound) {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if doc.Status != models.StatusReady {
		http.Error(w, "document is still "+doc.Status, http.StatusConflict)
		return
	}

	records, err := h.docs.Records(ctx, doc.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	answer, err := h.llm.Generate(ctx, llm.SpecSystemPrompt, llm.BuildSpecPrompt(doc, records, req.Query))
	if err != nil {
		log.Printf("ChatHandler: generation failed for %s: %v", doc.ID, err)
		http.Error(w, "LLM failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":  answer,
		"records": len(records),
	})
}
