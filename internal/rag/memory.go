package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/contexta-ai/contexta/internal/core"
)

// MemoryStore is a brute-force in-memory vector store with the same
// contract as the Milvus store, including the mandatory tenant predicate.
// Used for tests and local development without a Milvus instance.
type MemoryStore struct {
	mu     sync.RWMutex
	dim    int
	points []memoryPoint
}

type memoryPoint struct {
	id         string
	tenantID   int64
	documentID int64
	chunkIndex int
	text       string
	metadata   map[string]interface{}
	vector     []float32
}

// NewMemoryStore returns an empty store expecting vectors of the given
// dimension.
func NewMemoryStore(dim int) (*MemoryStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", core.ErrInvalidInput, dim)
	}
	return &MemoryStore{dim: dim}, nil
}

// EnsureCollection is a no-op for the in-memory store.
func (s *MemoryStore) EnsureCollection(ctx context.Context) error { return nil }

// Store appends one point per chunk after validating lengths and dimensions.
func (s *MemoryStore) Store(ctx context.Context, documentID, tenantID int64, chunks []string, embeddings [][]float32, metadata map[string]interface{}) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks but %d embeddings", core.ErrInvalidInput, len(chunks), len(embeddings))
	}
	for i, vec := range embeddings {
		if len(vec) != s.dim {
			return fmt.Errorf("%w: embedding %d has dimension %d, store expects %d", core.ErrInvalidInput, i, len(vec), s.dim)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		s.points = append(s.points, memoryPoint{
			id:         uuid.NewString(),
			tenantID:   tenantID,
			documentID: documentID,
			chunkIndex: i,
			text:       chunks[i],
			metadata:   metadata,
			vector:     embeddings[i],
		})
	}
	return nil
}

// Search scans the tenant's points, scoring by cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, tenantID int64, topK int, filters map[string]interface{}) ([]core.SearchResult, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, store expects %d", core.ErrInvalidInput, len(vector), s.dim)
	}
	if topK <= 0 {
		topK = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]core.SearchResult, 0)
	for _, p := range s.points {
		if p.tenantID != tenantID {
			continue
		}
		if !matchesFilters(p, filters) {
			continue
		}

		payload := map[string]interface{}{
			FieldTenantID:   p.tenantID,
			FieldDocumentID: p.documentID,
			FieldChunkIndex: p.chunkIndex,
			FieldText:       p.text,
		}
		for k, v := range p.metadata {
			payload[k] = v
		}

		results = append(results, core.SearchResult{
			ID:         p.id,
			Score:      cosineSimilarity(vector, p.vector),
			Payload:    payload,
			Text:       p.text,
			DocumentID: p.documentID,
			ChunkIndex: p.chunkIndex,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocument drops every point of the document within the tenant.
func (s *MemoryStore) DeleteDocument(ctx context.Context, documentID, tenantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.points[:0]
	for _, p := range s.points {
		if p.tenantID == tenantID && p.documentID == documentID {
			continue
		}
		kept = append(kept, p)
	}
	s.points = kept
	return nil
}

// Stats counts the tenant's points.
func (s *MemoryStore) Stats(ctx context.Context, tenantID int64) (core.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, p := range s.points {
		if p.tenantID == tenantID {
			count++
		}
	}
	return core.StoreStats{
		TenantID:    tenantID,
		PointCount:  count,
		Collection:  "memory",
		VectorDim:   s.dim,
		StoreStatus: "connected",
	}, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func matchesFilters(p memoryPoint, filters map[string]interface{}) bool {
	for k, want := range filters {
		var got interface{}
		switch k {
		case FieldID:
			got = p.id
		case FieldDocumentID:
			got = p.documentID
		case FieldChunkIndex:
			got = p.chunkIndex
		case FieldText:
			got = p.text
		default:
			got = p.metadata[k]
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
