package specparser

import (
	"math"
	"strconv"
	"strings"
)

// attempt is one step of the classification cascade. When applies reports
// true the attempt owns the text: a failed decode demotes straight to Residual.
type attempt struct {
	applies func(text string) bool
	decode  func(text, raw string) (Value, bool)
}

var attempts = []attempt{
	{applies: hasTolerance, decode: decodeBanded},
	{applies: hasDash, decode: decodeRange},
	{applies: hasComparison, decode: decodeComparison},
	{applies: func(string) bool { return true }, decode: decodeScalar},
}

// comparisonOps is checked in order, two-character operators first.
var comparisonOps = []string{">=", "<=", "≥", "≤", ">", "<"}

// Classify decides the shape of a value. text is the numeric portion of the
// value, raw the full fragment kept for Comparison and Residual.
func Classify(text, raw string) Value {
	text = strings.TrimSpace(text)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = text
	}
	for _, a := range attempts {
		if !a.applies(text) {
			continue
		}
		if v, ok := a.decode(text, raw); ok {
			return v
		}
		break
	}
	return Residual{Text: raw}
}

func hasTolerance(text string) bool {
	return strings.Contains(text, "±")
}

func hasDash(text string) bool {
	return strings.ContainsAny(text, "-–")
}

func hasComparison(text string) bool {
	for _, op := range comparisonOps {
		if strings.Contains(text, op) {
			return true
		}
	}
	return false
}

func decodeBanded(text, _ string) (Value, bool) {
	left, right, _ := strings.Cut(text, "±")
	v, ok := parseNumber(left)
	if !ok {
		return nil, false
	}
	tol, ok := parseNumber(right)
	if !ok {
		return nil, false
	}
	return Banded{Value: v, Tolerance: tol}, true
}

func decodeRange(text, _ string) (Value, bool) {
	parts := strings.Split(strings.ReplaceAll(text, "–", "-"), "-")
	if len(parts) != 2 {
		return nil, false
	}
	lo, ok := parseNumber(parts[0])
	if !ok {
		return nil, false
	}
	hi, ok := parseNumber(parts[1])
	if !ok {
		return nil, false
	}
	return Range{Min: lo, Max: hi}, true
}

func decodeComparison(_, raw string) (Value, bool) {
	return Comparison{Expr: raw}, true
}

func decodeScalar(text, _ string) (Value, bool) {
	v, ok := parseNumber(text)
	if !ok {
		return nil, false
	}
	return Scalar{Value: v}, true
}

// parseNumber accepts finite decimal numbers only; empty segments fail.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
