package core

import "context"

// Chunker splits raw document text into ordered chunks of text.
type Chunker interface {
	// Chunk splits text into overlapping fixed-size windows. The returned
	// slice is ordered; a text shorter than the window yields one chunk.
	Chunk(text string) ([]string, error)
}

// Embedder converts text into fixed-dimension vectors via an external
// provider.
type Embedder interface {
	// EmbedBatch returns one vector per input text, order-preserving, in a
	// single provider call. A provider error fails the whole batch.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension reports the vector length produced by the configured model.
	Dimension() int
}

// VectorStore persists (vector, text, tenant, document, chunk-index) tuples
// in one shared tenant-partitioned index and answers nearest-neighbor
// queries scoped to a tenant. Implementations must apply the tenant filter
// on every read and write; callers never re-implement it.
type VectorStore interface {
	// EnsureCollection idempotently creates the shared index if absent.
	// Safe to call before every write or read.
	EnsureCollection(ctx context.Context) error
	// Store writes one point per chunk, tagged with tenantID, documentID and
	// the chunk's position. Fails with ErrInvalidInput before any write when
	// len(chunks) != len(embeddings).
	Store(ctx context.Context, documentID, tenantID int64, chunks []string, embeddings [][]float32, metadata map[string]interface{}) error
	// Search returns at most topK results for the tenant ordered by
	// descending score. Extra filters are AND-combined with the mandatory
	// tenant predicate. An empty result is not an error.
	Search(ctx context.Context, vector []float32, tenantID int64, topK int, filters map[string]interface{}) ([]SearchResult, error)
	// DeleteDocument removes every point of a document within the tenant.
	DeleteDocument(ctx context.Context, documentID, tenantID int64) error
	// Stats reports tenant-scoped statistics.
	Stats(ctx context.Context, tenantID int64) (StoreStats, error)
	// Ping checks reachability of the underlying engine.
	Ping(ctx context.Context) error
}

// Reranker reorders a candidate result set by a relevance signal. The query
// argument is accepted by every strategy even when a strategy ignores it.
type Reranker interface {
	Rerank(query string, results []SearchResult, topK int) []SearchResult
}

// PromptBuilder assembles a bounded-size context block plus question into a
// single prompt for answer generation.
type PromptBuilder interface {
	Build(question string, contextChunks []SearchResult, maxContextLength int) string
	BuildWithSources(question string, contextChunks []SearchResult, maxContextLength int) string
}

// LLMService generates answers from an assembled prompt.
type LLMService interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateStream calls fn with each text delta as it arrives.
	GenerateStream(ctx context.Context, prompt string, fn func(delta string) error) error
	ModelName() string
}

// Notifier delivers asynchronous ingestion status callbacks. Delivery is
// best-effort: implementations log failures and never return them.
type Notifier interface {
	Notify(ctx context.Context, url string, payload interface{})
}
