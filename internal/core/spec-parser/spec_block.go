package specparser

import "strings"

// SpecificationHeading marks the start of a nameplate block on a page.
const SpecificationHeading = "technical specifications"

// ParseSpecificationBlock parses only the lines following the technical
// specifications heading. Lines without a colon continue the previous
// "key: value" line. ok is false when the page has no such heading.
func (p *Parser) ParseSpecificationBlock(text string, pageIndex int, modelID string) (records []Record, ok bool) {
	block, ok := specificationBlock(NormalizeText(text))
	if !ok {
		return nil, false
	}
	return p.ParsePage(block, pageIndex, modelID), true
}

// ParseSpecificationBlock uses the default unit table.
func ParseSpecificationBlock(text string, pageIndex int, modelID string) ([]Record, bool) {
	return defaultParser.ParseSpecificationBlock(text, pageIndex, modelID)
}

func specificationBlock(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), SpecificationHeading) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false
	}

	var merged []string
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, ":") || len(merged) == 0 {
			merged = append(merged, line)
			continue
		}
		merged[len(merged)-1] += " " + line
	}
	return strings.Join(merged, "\n"), true
}

// SectionMap flattens records into parameter -> raw value. Later records
// overwrite earlier ones with the same parameter.
func SectionMap(records []Record) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		out[r.Parameter] = r.RawValue
	}
	return out
}
