// Package specparser turns datasheet page text into typed parameter records.
//
// The package is pure: it performs no I/O, holds no mutable state and never
// returns an error. Malformed values degrade to weaker shapes instead.
package specparser

// UnknownModel is returned by IdentifyModel when no known product code is found.
const UnknownModel = "UnknownModel"

// Shape names the typed form a parsed value took.
type Shape string

const (
	ShapeScalar     Shape = "scalar"
	ShapeBanded     Shape = "banded"
	ShapeRange      Shape = "range"
	ShapeComparison Shape = "comparison"
	ShapeResidual   Shape = "residual"
)

// Value is one of Scalar, Banded, Range, Comparison or Residual.
type Value interface {
	Shape() Shape
}

// Scalar is a plain point value, e.g. "400".
type Scalar struct {
	Value float64
}

// Banded is a point value with a symmetric tolerance, e.g. "11 ± 0.5".
type Banded struct {
	Value     float64
	Tolerance float64
}

// Range is an inclusive min/max span, e.g. "1450-1500".
type Range struct {
	Min float64
	Max float64
}

// Comparison keeps an inequality verbatim, e.g. ">=95%".
type Comparison struct {
	Expr string
}

// Residual keeps text that could not be decomposed numerically.
type Residual struct {
	Text string
}

func (Scalar) Shape() Shape     { return ShapeScalar }
func (Banded) Shape() Shape     { return ShapeBanded }
func (Range) Shape() Shape      { return ShapeRange }
func (Comparison) Shape() Shape { return ShapeComparison }
func (Residual) Shape() Shape   { return ShapeResidual }

// Record is one parameter observation extracted from a page.
//
// ModelID:    document-scoped product tag, never empty.
// Parameter:  cleaned, title-cased label.
// RawValue:   the matched value+unit fragment, trimmed.
// Unit:       normalised unit; empty means no unit was present.
// SourcePage: 1-based page number.
// Value:      exactly one typed shape.
type Record struct {
	ModelID    string
	Parameter  string
	RawValue   string
	Unit       string
	SourcePage int
	Value      Value
}
