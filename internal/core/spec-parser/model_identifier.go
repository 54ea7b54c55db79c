package specparser

import (
	"regexp"
	"strings"
)

// modelPattern lists known product-code families as alternatives of one
// expression; the leftmost match in the text wins.
var modelPattern = regexp.MustCompile(
	`\b(?:` +
		`1L[AEGP]\d{4}(?:-[0-9A-Z]{4,6}){0,2}` + // Siemens SIMOTICS
		`|M[23][A-Z]{2,4} ?\d{2,3}[A-Z]{0,4}` + // ABB process performance
		`|W2[0-9](?: ?IE[1-4])?` + // WEG W2x
		`|LS(?:ES)? ?\d{2,3}[A-Z]{0,3}` + // Leroy-Somer
		`|[CE]?EM\d{4}T?` + // Baldor
		`)\b`,
)

// IdentifyModel returns the first known product code in text, or UnknownModel.
func IdentifyModel(text string) string {
	m := modelPattern.FindString(text)
	if m = strings.TrimSpace(m); m == "" {
		return UnknownModel
	}
	return m
}
