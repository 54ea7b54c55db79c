package models

import (
	"encoding/json"
	"time"

	specparser "github.com/markdave123-py/Specta/internal/core/spec-parser"
)

// Document statuses.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents an uploaded datasheet.
type Document struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	StorageURL  string    `db:"storage_url" json:"storage_url"` // S3 URL
	SourceType  string    `db:"source_type" json:"source_type"` // "upload" or "batch"
	ContentType string    `db:"content_type" json:"content_type"`
	Status      string    `db:"status" json:"status"`     // uploaded | processing | ready | failed
	ModelID     string    `db:"model_id" json:"model_id"` // set once ingestion identified it
	PageCount   int       `db:"page_count" json:"page_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SpecRecord is the persisted form of one parsed parameter.
// Exactly one group of value columns is set, matching Shape.
// Its JSON form is flat, see MarshalJSON.
type SpecRecord struct {
	ID             string    `db:"id"`
	DocumentID     string    `db:"document_id"`
	SourceDocument string    `db:"source_document"`
	ModelID        string    `db:"model_id"`
	Parameter      string    `db:"parameter"`
	RawValue       string    `db:"raw_value"`
	Unit           *string   `db:"unit"`
	SourcePage     int       `db:"source_page"`
	Position       int       `db:"position"` // order within the document
	Shape          string    `db:"shape"`
	Value          *float64  `db:"value_num"`
	Tolerance      *float64  `db:"tolerance"`
	Min            *float64  `db:"min_value"`
	Max            *float64  `db:"max_value"`
	Comparison     *string   `db:"comparison"`
	ValueText      *string   `db:"value_text"` // residual text
	Embedding      []float32 `db:"embedding"`  // parameter label embedding
	CreatedAt      time.Time `db:"created_at"`
}

type specRecordJSON struct {
	ID             string     `json:"id,omitempty"`
	DocumentID     string     `json:"document_id,omitempty"`
	SourceDocument string     `json:"source_document,omitempty"`
	ModelID        string     `json:"model_id"`
	Parameter      string     `json:"parameter"`
	RawValue       string     `json:"raw_value"`
	Unit           *string    `json:"unit,omitempty"`
	SourcePage     int        `json:"source_page"`
	Position       int        `json:"position"`
	Shape          string     `json:"shape"`
	Value          any        `json:"value,omitempty"`
	Tolerance      *float64   `json:"tolerance,omitempty"`
	Min            *float64   `json:"min,omitempty"`
	Max            *float64   `json:"max,omitempty"`
	Comparison     *string    `json:"comparison,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// MarshalJSON emits the record shape: "value" holds the number for scalar and
// banded records and the verbatim text for residual ones. Storage-only fields
// are left out until the row has been persisted.
func (r SpecRecord) MarshalJSON() ([]byte, error) {
	out := specRecordJSON{
		ID:             r.ID,
		DocumentID:     r.DocumentID,
		SourceDocument: r.SourceDocument,
		ModelID:        r.ModelID,
		Parameter:      r.Parameter,
		RawValue:       r.RawValue,
		Unit:           r.Unit,
		SourcePage:     r.SourcePage,
		Position:       r.Position,
		Shape:          r.Shape,
		Tolerance:      r.Tolerance,
		Min:            r.Min,
		Max:            r.Max,
		Comparison:     r.Comparison,
	}
	switch {
	case r.ValueText != nil:
		out.Value = *r.ValueText
	case r.Value != nil:
		out.Value = *r.Value
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = &r.CreatedAt
	}
	return json.Marshal(out)
}

// NewSpecRecord maps a parsed record onto its storage row.
func NewSpecRecord(documentID, sourceDocument string, position int, r specparser.Record) SpecRecord {
	row := SpecRecord{
		DocumentID:     documentID,
		SourceDocument: sourceDocument,
		ModelID:        r.ModelID,
		Parameter:      r.Parameter,
		RawValue:       r.RawValue,
		SourcePage:     r.SourcePage,
		Position:       position,
	}
	if r.Unit != "" {
		row.Unit = ptr(r.Unit)
	}
	if r.Value == nil {
		row.Shape = string(specparser.ShapeResidual)
		row.ValueText = ptr(r.RawValue)
		return row
	}

	row.Shape = string(r.Value.Shape())
	switch v := r.Value.(type) {
	case specparser.Scalar:
		row.Value = ptr(v.Value)
	case specparser.Banded:
		row.Value, row.Tolerance = ptr(v.Value), ptr(v.Tolerance)
	case specparser.Range:
		row.Min, row.Max = ptr(v.Min), ptr(v.Max)
	case specparser.Comparison:
		row.Comparison = ptr(v.Expr)
	case specparser.Residual:
		row.ValueText = ptr(v.Text)
	}
	return row
}

func ptr[T any](v T) *T { return &v }
