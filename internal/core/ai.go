package core

import "context"

// EmbeddingProvider turns parameter labels ("Rated Power", "Speed") and
// search queries into vectors stored beside each spec record, so records can
// be found by what a parameter means rather than how a datasheet spells it.
// Every returned vector has the dimension of the records.embedding column.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider answers a user's question over the records extracted from one
// document. The user prompt carries the records; the model sees nothing else.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
