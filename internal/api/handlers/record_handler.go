package handlers

import (
	"errors"
	"net/http"
	"strconv"

	appMiddleware "github.com/markdave123-py/Specta/internal/api/middlewares"
	"github.com/markdave123-py/Specta/internal/models"
	"github.com/markdave123-py/Specta/internal/services"
)

type RecordHandler struct {
	records *services.RecordService
}

func NewRecordHandler(records *services.RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

// Search finds records whose parameter label is semantically close to q.
func (h *RecordHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	if q.Get("q") == "" {
		http.Error(w, "missing q", http.StatusBadRequest)
		return
	}
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.records.Search(r.Context(), userID, q.Get("q"), limit)
	if errors.Is(err, services.ErrSearchDisabled) {
		http.Error(w, err.Error(), http.StatusNotImplemented)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRecords(w, records)
}

// ByParameter lists records with an exact parameter label.
func (h *RecordHandler) ByParameter(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	parameter := r.URL.Query().Get("parameter")
	if parameter == "" {
		http.Error(w, "missing parameter", http.StatusBadRequest)
		return
	}

	records, err := h.records.ByParameter(r.Context(), userID, parameter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRecords(w, records)
}

func writeRecords(w http.ResponseWriter, records []models.SpecRecord) {
	if records == nil {
		records = []models.SpecRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}
