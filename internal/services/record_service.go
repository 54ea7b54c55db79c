package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markdave123-py/Specta/internal/core"
	"github.com/markdave123-py/Specta/internal/models"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// ErrSearchDisabled is returned when no embedding provider is configured.
var ErrSearchDisabled = errors.New("semantic search is not configured")

// RecordService queries spec records across a user's documents.
type RecordService struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
}

func NewRecordService(db core.DbClient, emb core.EmbeddingProvider) *RecordService {
	return &RecordService{db: db, embedder: emb}
}

// Search embeds query and returns the records with the nearest parameter labels.
func (s *RecordService) Search(ctx context.Context, userID, query string, limit int) ([]models.SpecRecord, error) {
	if s.embedder == nil {
		return nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}

	vecs, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: empty result")
	}
	return s.db.SearchRecords(ctx, userID, vecs[0], limit)
}

// ByParameter matches the cleaned parameter label exactly.
func (s *RecordService) ByParameter(ctx context.Context, userID, parameter string) ([]models.SpecRecord, error) {
	parameter = strings.TrimSpace(parameter)
	if parameter == "" {
		return nil, nil
	}
	return s.db.ListRecordsByParameter(ctx, userID, parameter)
}
