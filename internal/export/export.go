// Package export serialises spec records into row and line oriented formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/markdave123-py/Specta/internal/models"
)

// Format names a supported export encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat maps a query value onto a Format; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSONL:
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the HTTP media type for f.
func (f Format) ContentType() string {
	if f == FormatJSONL {
		return "application/x-ndjson"
	}
	return "text/csv"
}

// Header is the column layout of CSV exports.
var Header = []string{
	"source_document", "model_id", "parameter", "value", "tolerance", "min", "max",
	"comparison", "unit", "raw_value", "source_page", "shape",
}

// Write encodes records to w in format f.
func Write(w io.Writer, f Format, records []models.SpecRecord) error {
	switch f {
	case FormatJSONL:
		return WriteJSONL(w, records)
	default:
		return WriteCSV(w, records)
	}
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []models.SpecRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range records {
		if err := cw.Write(row(&records[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSONL writes one JSON object per line.
func WriteJSONL(w io.Writer, records []models.SpecRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return nil
}

func row(r *models.SpecRecord) []string {
	value := num(r.Value)
	if r.ValueText != nil {
		value = *r.ValueText
	}
	return []string{
		r.SourceDocument,
		r.ModelID,
		r.Parameter,
		value,
		num(r.Tolerance),
		num(r.Min),
		num(r.Max),
		str(r.Comparison),
		str(r.Unit),
		r.RawValue,
		strconv.Itoa(r.SourcePage),
		r.Shape,
	}
}

func num(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
