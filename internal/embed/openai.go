package embed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/logger"
)

// Embedding dimensions by model. Vectors stored in the index must match the
// dimension the collection was created with; unknown models fall back to the
// large-model dimension.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// DefaultDimension is used for models missing from the table.
const DefaultDimension = 3072

// DimensionForModel returns the vector length a model produces.
func DimensionForModel(model string) int {
	if dim, ok := modelDimensions[model]; ok {
		return dim
	}
	return DefaultDimension
}

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIEmbedder creates an embedder for the given model. The timeout
// bounds every provider call.
func NewOpenAIEmbedder(apiKey, model string, timeout time.Duration) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", core.ErrInvalidInput)
	}
	if model == "" {
		model = "text-embedding-3-large"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dim:    DimensionForModel(model),
	}, nil
}

// EmbedBatch embeds all texts in a single provider call, preserving input
// order. Any provider error fails the whole batch; no partial results.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings request for %d texts: %v", core.ErrUpstream, len(texts), err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d embeddings for %d texts", core.ErrUpstream, len(resp.Data), len(texts))
	}

	// The API may return data out of order; the Index field is authoritative.
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", core.ErrUpstream, item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	logger.Debug("Embedded %d texts with model %s", len(texts), e.model)
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimension reports the vector length produced by the configured model.
func (e *OpenAIEmbedder) Dimension() int { return e.dim }

// ModelName returns the configured embedding model.
func (e *OpenAIEmbedder) ModelName() string { return e.model }
