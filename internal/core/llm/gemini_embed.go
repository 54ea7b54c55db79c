package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/Specta/internal/core"
)

// EmbeddingDim is the width of records.embedding (vector(768) in initdb.sql)
// and of text-embedding-004 output.
const EmbeddingDim = 768

const defaultEmbedModel = "text-embedding-004"

// GeminiEmbedder embeds parameter labels for similarity search over records.
// Labels and search queries share the semantic-similarity task type.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if modelName == "" {
		modelName = defaultEmbedModel
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini embed client: %w", err)
	}
	return &GeminiEmbedder{client: cl, modelName: modelName}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// EmbedTexts sends all labels of one record flush as a single batch and
// returns one EmbeddingDim-wide vector per label, in input order.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.modelName)
	em.TaskType = genai.TaskTypeSemanticSimilarity

	batch := em.NewBatch()
	for _, label := range texts {
		batch.AddContent(genai.Text(label))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed of %d labels: %w", len(texts), err)
	}
	return labelVectors(resp.Embeddings, len(texts), EmbeddingDim)
}

// labelVectors unpacks a batch response; every label needs a vector of width dim.
func labelVectors(embs []*genai.ContentEmbedding, want, dim int) ([][]float32, error) {
	if len(embs) != want {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d labels", len(embs), want)
	}
	out := make([][]float32, len(embs))
	for i, e := range embs {
		if e == nil || len(e.Values) != dim {
			got := 0
			if e != nil {
				got = len(e.Values)
			}
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, got, dim)
		}
		out[i] = e.Values
	}
	return out, nil
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)
