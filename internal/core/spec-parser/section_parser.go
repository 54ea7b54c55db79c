package specparser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	labelRun = `([\p{L}\p{N}(\[][\p{L}\p{N} ()\[\]/.,#&'°µ±\-–]*)`
	opRun    = `(?:[<>]=?|[≤≥])[ \t]*`
	numRun   = `[+\-]?\d+(?:[.,]\d+)*`
	jointRun = `[ \t]*(?:±|[\-–~/×])[ \t]*`
	// unitBody allows one trailing digit (kgm2) and a letter qualifier (dB(A)).
	unitBody = `[\p{L}°%][\p{L}°%/.·²³]*\d?(?:\(\p{L}+\))?`
	// perUnit is a reciprocal unit such as 1/min; it must be set off by a blank.
	perUnit = `1/` + unitBody
	codeRun = `\p{Lu}\p{L}*\p{N}*\p{L}*`
)

var (
	// sectionPattern captures "label: value[unit]" candidates.
	sectionPattern = regexp.MustCompile(
		labelRun + `:[ \t]*(` +
			`(?:` + opRun + `)?` + numRun + `(?:` + jointRun + numRun + `)*(?:[ \t]*` + unitBody + `|[ \t]+` + perUnit + `)?` +
			`|` + codeRun +
			`)`,
	)

	// valueSplit separates the numeric prefix from a trailing unit token.
	valueSplit = regexp.MustCompile(
		`^([^\p{L}°%]*\d[^\p{L}°%]*?)(?:[ \t]*(` + unitBody + `)|[ \t]+(` + perUnit + `))?$`,
	)

	parenthesized = regexp.MustCompile(`\([^()]*\)`)
)

// Parser extracts records using a fixed unit table.
type Parser struct {
	units *UnitTable
}

// NewParser returns a parser backed by units. A nil table means DefaultUnits.
func NewParser(units *UnitTable) *Parser {
	if units == nil {
		units = DefaultUnits
	}
	return &Parser{units: units}
}

var defaultParser = NewParser(DefaultUnits)

// ParsePage parses one page with the default unit table.
func ParsePage(text string, pageIndex int, modelID string) []Record {
	return defaultParser.ParsePage(text, pageIndex, modelID)
}

// ParsePage finds label/value candidates on a page and decodes each into a
// Record. pageIndex is 0-based; records carry it 1-based.
func (p *Parser) ParsePage(text string, pageIndex int, modelID string) []Record {
	if modelID = strings.TrimSpace(modelID); modelID == "" {
		modelID = UnknownModel
	}
	text = NormalizeText(text)

	matches := sectionPattern.FindAllStringSubmatch(text, -1)
	records := make([]Record, 0, len(matches))
	for _, m := range matches {
		param := cleanLabel(m[1])
		raw := strings.TrimSpace(m[2])
		if param == "" || raw == "" {
			continue
		}
		valueText, unit := p.splitValue(raw)
		records = append(records, Record{
			ModelID:    modelID,
			Parameter:  param,
			RawValue:   raw,
			Unit:       unit,
			SourcePage: pageIndex + 1,
			Value:      Classify(valueText, raw),
		})
	}
	return records
}

// splitValue returns the numeric portion of raw and its normalised unit.
// Values without a numeric prefix, such as "IP55" or "F", are kept whole
// and carry no unit.
func (p *Parser) splitValue(raw string) (string, string) {
	m := valueSplit.FindStringSubmatch(raw)
	if m == nil {
		return raw, ""
	}
	return strings.TrimSpace(m[1]), p.units.Normalize(m[2] + m[3])
}

// NormalizeText repairs invalid UTF-8 and composes characters to NFC so that
// symbols like "°" and "±" match regardless of how the extractor encoded them.
func NormalizeText(text string) string {
	return norm.NFC.String(strings.ToValidUTF8(text, "�"))
}

// cleanLabel strips parenthesised content, collapses whitespace and
// title-cases the result.
func cleanLabel(label string) string {
	for {
		stripped := parenthesized.ReplaceAllString(label, " ")
		if stripped == label {
			break
		}
		label = stripped
	}
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return ""
	}
	return cases.Title(language.Und).String(label)
}
