package llm

import (
	"fmt"
	"strings"

	"github.com/markdave123-py/Specta/internal/models"
)

// SpecSystemPrompt keeps answers grounded in the extracted parameters.
const SpecSystemPrompt = "You are a technical assistant answering questions about an equipment datasheet. " +
	"Use only the specification records given in the context. Quote values with their units and page numbers. " +
	"If the records do not contain the answer, say 'I cannot find this in the datasheet.'"

// BuildSpecPrompt renders a document's records as a compact context block followed by the question.
func BuildSpecPrompt(doc *models.Document, records []models.SpecRecord, question string) string {
	var sb strings.Builder
	if doc != nil {
		fmt.Fprintf(&sb, "Document: %s\nModel: %s\n", doc.FileName, doc.ModelID)
	}
	sb.WriteString("Records:\n")
	for _, r := range records {
		fmt.Fprintf(&sb, "- %s = %s (page %d)\n", r.Parameter, r.RawValue, r.SourcePage)
	}
	fmt.Fprintf(&sb, "\nQuestion: %s", strings.TrimSpace(question))
	return sb.String()
}
