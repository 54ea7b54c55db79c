package specparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		raw  string
		want Value
	}{
		{"scalar", "42", "42 Nm", Scalar{Value: 42}},
		{"banded", "11 ± 0.5", "11 ± 0.5 kW", Banded{Value: 11, Tolerance: 0.5}},
		{"banded parse failure skips range", "1 ± 2-3", "1 ± 2-3 V", Residual{Text: "1 ± 2-3 V"}},
		{"range", "10-20", "10-20 mm", Range{Min: 10, Max: 20}},
		{"range with blanks", "10 – 20", "10 – 20", Range{Min: 10, Max: 20}},
		{"three segments", "1-2-3", "1-2-3", Residual{Text: "1-2-3"}},
		{"negative number", "-20", "-20 °C", Residual{Text: "-20 °C"}},
		{"dash wins over comparison", "<-5", "<-5", Residual{Text: "<-5"}},
		{"comparison", ">=95", ">=95%", Comparison{Expr: ">=95%"}},
		{"unicode comparison", "≤ 80", "≤ 80 dB", Comparison{Expr: "≤ 80 dB"}},
		{"not a number", "abc", "abc", Residual{Text: "abc"}},
		{"decimal comma", "0,85", "0,85", Residual{Text: "0,85"}},
		{"overflow", "1e999", "1e999", Residual{Text: "1e999"}},
		{"nan literal", "NaN", "NaN", Residual{Text: "NaN"}},
		{"raw falls back to text", " 7 ", "", Scalar{Value: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text, tt.raw))
		})
	}
}

func TestClassify_ShapesAreExclusive(t *testing.T) {
	assert.Equal(t, ShapeScalar, Classify("1", "1").Shape())
	assert.Equal(t, ShapeBanded, Classify("1±1", "1±1").Shape())
	assert.Equal(t, ShapeRange, Classify("1-2", "1-2").Shape())
	assert.Equal(t, ShapeComparison, Classify(">1", ">1").Shape())
	assert.Equal(t, ShapeResidual, Classify("x", "x").Shape())
}
