package query

import (
	"context"
	"fmt"

	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/logger"
)

// Request parameter defaults.
const (
	DefaultTopK             = 10
	DefaultRerankTopK       = 5
	DefaultMaxContextLength = 3000
)

// NoResultsAnswer is returned verbatim when the tenant has no matching
// vectors; the answer generator is never invoked in that case.
const NoResultsAnswer = "I couldn't find any relevant information in the documents."

// previewLength bounds the source text preview in responses.
const previewLength = 200

// Request asks a question against one tenant's documents.
type Request struct {
	Query            string `json:"query"`
	TenantID         int64  `json:"tenant_id"`
	TopK             int    `json:"top_k,omitempty"`
	RerankTopK       int    `json:"rerank_top_k,omitempty"`
	MaxContextLength int    `json:"max_context_length,omitempty"`
}

// Source identifies one chunk that grounded the answer.
type Source struct {
	DocumentID  int64   `json:"document_id"`
	ChunkIndex  int     `json:"chunk_index"`
	Score       float64 `json:"score"`
	TextPreview string  `json:"text_preview"`
}

// Response carries the generated answer and its sources.
type Response struct {
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Query    string   `json:"query"`
	TenantID int64    `json:"tenant_id"`
}

// Service sequences the query pipeline: embed the query, search the
// tenant's partition, rerank, build the prompt and generate the answer.
// The steps run strictly in sequence.
type Service struct {
	embedder core.Embedder
	store    core.VectorStore
	reranker core.Reranker
	prompts  core.PromptBuilder
	llm      core.LLMService
}

// NewService wires the query pipeline with explicit collaborators.
func NewService(embedder core.Embedder, store core.VectorStore, reranker core.Reranker, prompts core.PromptBuilder, llm core.LLMService) *Service {
	return &Service{
		embedder: embedder,
		store:    store,
		reranker: reranker,
		prompts:  prompts,
		llm:      llm,
	}
}

// Answer runs the pipeline for one question. An empty search result
// short-circuits to the fixed no-results answer with no generator call.
func (s *Service) Answer(ctx context.Context, req Request) (*Response, error) {
	if req.TopK <= 0 {
		req.TopK = DefaultTopK
	}
	if req.RerankTopK <= 0 {
		req.RerankTopK = DefaultRerankTopK
	}
	if req.MaxContextLength <= 0 {
		req.MaxContextLength = DefaultMaxContextLength
	}

	logger.Info("Processing query for tenant %d: %.50s", req.TenantID, req.Query)

	queryVector, err := s.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	searchResults, err := s.store.Search(ctx, queryVector, req.TenantID, req.TopK, nil)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if len(searchResults) == 0 {
		logger.Info("No results for tenant %d query", req.TenantID)
		return &Response{
			Answer:   NoResultsAnswer,
			Sources:  []Source{},
			Query:    req.Query,
			TenantID: req.TenantID,
		}, nil
	}
	logger.Debug("Found %d search results", len(searchResults))

	reranked := s.reranker.Rerank(req.Query, searchResults, req.RerankTopK)
	logger.Debug("Selected %d results after reranking", len(reranked))

	prompt := s.prompts.BuildWithSources(req.Query, reranked, req.MaxContextLength)

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("answer generation: %w", err)
	}

	sources := make([]Source, 0, len(reranked))
	for _, r := range reranked {
		sources = append(sources, Source{
			DocumentID:  r.DocumentID,
			ChunkIndex:  r.ChunkIndex,
			Score:       r.Score,
			TextPreview: preview(r.Text),
		})
	}

	logger.Info("Query completed for tenant %d", req.TenantID)
	return &Response{
		Answer:   answer,
		Sources:  sources,
		Query:    req.Query,
		TenantID: req.TenantID,
	}, nil
}

func preview(text string) string {
	if len(text) > previewLength {
		return text[:previewLength] + "..."
	}
	return text
}
