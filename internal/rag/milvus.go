package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/logger"
)

// Field names for the shared documents collection.
const (
	FieldID         = "id"
	FieldTenantID   = "tenant_id"
	FieldDocumentID = "document_id"
	FieldChunkIndex = "chunk_index"
	FieldText       = "text"
	FieldMetadata   = "metadata"
	FieldVector     = "vector"
)

// DefaultCollection is the shared, tenant-partitioned index. All tenants
// live in one physical collection; isolation is the mandatory tenant_id
// predicate applied by this store on every read and write.
const DefaultCollection = "contexta_documents"

const (
	idMaxLength   = "64"
	textMaxLength = "65535"
)

// MilvusStore is the Milvus-backed vector store. It owns the tenant filter
// chokepoint: no caller supplies or bypasses the tenant predicate.
type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dim        int
}

// NewMilvusStore connects to Milvus and returns a store sized to the given
// embedding dimension.
func NewMilvusStore(ctx context.Context, addr, collection string, dim int) (*MilvusStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", core.ErrInvalidInput, dim)
	}
	if collection == "" {
		collection = DefaultCollection
	}

	logger.Info("Connecting to Milvus at %s (collection %s, dim %d)", addr, collection, dim)
	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to Milvus: %v", core.ErrUpstream, err)
	}

	return &MilvusStore{client: c, collection: collection, dim: dim}, nil
}

// EnsureCollection idempotently creates and loads the shared collection.
// Safe to call before every write or read.
func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("%w: failed to check if collection exists: %v", core.ErrUpstream, err)
	}

	if !exists {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "Tenant-partitioned document chunks for retrieval",
			Fields: []*entity.Field{
				{
					Name:       FieldID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{"max_length": idMaxLength},
				},
				{
					Name:     FieldTenantID,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:     FieldDocumentID,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:     FieldChunkIndex,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:     FieldText,
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": textMaxLength,
					},
				},
				{
					Name:     FieldMetadata,
					DataType: entity.FieldTypeJSON,
				},
				{
					Name:     FieldVector,
					DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{
						"dim": fmt.Sprintf("%d", s.dim),
					},
				},
			},
		}

		createOpt := milvusclient.NewCreateCollectionOption(s.collection, schema)
		if err := s.client.CreateCollection(ctx, createOpt); err != nil {
			return fmt.Errorf("%w: failed to create collection: %v", core.ErrUpstream, err)
		}

		vecIdx := index.NewHNSWIndex(entity.COSINE, 16, 200)
		indexOpt := milvusclient.NewCreateIndexOption(s.collection, FieldVector, vecIdx)
		if _, err := s.client.CreateIndex(ctx, indexOpt); err != nil {
			return fmt.Errorf("%w: failed to create index on vector field: %v", core.ErrUpstream, err)
		}

		logger.Info("Created collection %s with dimension %d", s.collection, s.dim)
	}

	loadOpt := milvusclient.NewLoadCollectionOption(s.collection)
	if _, err := s.client.LoadCollection(ctx, loadOpt); err != nil {
		return fmt.Errorf("%w: failed to load collection %s: %v", core.ErrUpstream, s.collection, err)
	}
	return nil
}

// Store writes one point per chunk tagged with tenantID, documentID and the
// chunk's position in the input. Length and dimension validation happens
// before any write; nothing is padded or truncated.
func (s *MilvusStore) Store(ctx context.Context, documentID, tenantID int64, chunks []string, embeddings [][]float32, metadata map[string]interface{}) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks but %d embeddings", core.ErrInvalidInput, len(chunks), len(embeddings))
	}
	for i, vec := range embeddings {
		if len(vec) != s.dim {
			return fmt.Errorf("%w: embedding %d has dimension %d, collection expects %d", core.ErrInvalidInput, i, len(vec), s.dim)
		}
	}
	if len(chunks) == 0 {
		return nil
	}

	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	metadataBytes := []byte("{}")
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("%w: failed to encode metadata: %v", core.ErrInvalidInput, err)
		}
		metadataBytes = b
	}

	n := len(chunks)
	ids := make([]string, n)
	tenants := make([]int64, n)
	docs := make([]int64, n)
	indexes := make([]int64, n)
	metadatas := make([][]byte, n)
	for i := range chunks {
		ids[i] = uuid.NewString()
		tenants[i] = tenantID
		docs[i] = documentID
		indexes[i] = int64(i)
		metadatas[i] = metadataBytes
	}

	insertOpt := milvusclient.NewColumnBasedInsertOption(s.collection,
		column.NewColumnVarChar(FieldID, ids),
		column.NewColumnInt64(FieldTenantID, tenants),
		column.NewColumnInt64(FieldDocumentID, docs),
		column.NewColumnInt64(FieldChunkIndex, indexes),
		column.NewColumnVarChar(FieldText, chunks),
		column.NewColumnJSONBytes(FieldMetadata, metadatas),
		column.NewColumnFloatVector(FieldVector, s.dim, embeddings),
	)
	if _, err := s.client.Insert(ctx, insertOpt); err != nil {
		return fmt.Errorf("%w: failed to insert %d points: %v", core.ErrUpstream, n, err)
	}

	logger.Info("Stored %d chunks for document %d (tenant %d)", n, documentID, tenantID)
	return nil
}

// Search returns at most topK results for the tenant, ordered by descending
// score. The tenant predicate is always applied; extra filters are
// AND-combined with it. No matches yields an empty slice, not an error.
func (s *MilvusStore) Search(ctx context.Context, vector []float32, tenantID int64, topK int, filters map[string]interface{}) ([]core.SearchResult, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, collection expects %d", core.ErrInvalidInput, len(vector), s.dim)
	}
	if topK <= 0 {
		topK = 10
	}

	if err := s.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	expr := buildFilterExpr(tenantID, filters)
	searchOpt := milvusclient.NewSearchOption(s.collection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(FieldVector).
		WithFilter(expr).
		WithOutputFields(FieldID, FieldTenantID, FieldDocumentID, FieldChunkIndex, FieldText, FieldMetadata)

	resultSets, err := s.client.Search(ctx, searchOpt)
	if err != nil {
		return nil, fmt.Errorf("%w: search failed: %v", core.ErrUpstream, err)
	}
	if len(resultSets) == 0 {
		return []core.SearchResult{}, nil
	}

	rs := resultSets[0]
	results := make([]core.SearchResult, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		id, err := rs.IDs.GetAsString(i)
		if err != nil {
			logger.Warn("Skipping result %d: unreadable id: %v", i, err)
			continue
		}

		text := getString(rs.GetColumn(FieldText), i)
		docID := getInt64(rs.GetColumn(FieldDocumentID), i)
		chunkIndex := getInt64(rs.GetColumn(FieldChunkIndex), i)

		payload := map[string]interface{}{
			FieldTenantID:   tenantID,
			FieldDocumentID: docID,
			FieldChunkIndex: int(chunkIndex),
			FieldText:       text,
		}
		if metaCol, ok := rs.GetColumn(FieldMetadata).(*column.ColumnJSONBytes); ok && i < len(metaCol.Data()) {
			var meta map[string]interface{}
			if err := json.Unmarshal(metaCol.Data()[i], &meta); err == nil {
				for k, v := range meta {
					payload[k] = v
				}
			}
		}

		score := float64(0)
		if i < len(rs.Scores) {
			score = float64(rs.Scores[i])
		}

		results = append(results, core.SearchResult{
			ID:         id,
			Score:      score,
			Payload:    payload,
			Text:       text,
			DocumentID: docID,
			ChunkIndex: int(chunkIndex),
		})
	}
	return results, nil
}

// DeleteDocument removes every point of a document within the tenant.
func (s *MilvusStore) DeleteDocument(ctx context.Context, documentID, tenantID int64) error {
	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	expr := fmt.Sprintf("%s == %d and %s == %d", FieldTenantID, tenantID, FieldDocumentID, documentID)
	deleteOpt := milvusclient.NewDeleteOption(s.collection).WithExpr(expr)
	if _, err := s.client.Delete(ctx, deleteOpt); err != nil {
		return fmt.Errorf("%w: failed to delete document %d (tenant %d): %v", core.ErrUpstream, documentID, tenantID, err)
	}

	logger.Info("Deleted document %d (tenant %d)", documentID, tenantID)
	return nil
}

// Stats reports how many points the tenant has in the shared collection.
func (s *MilvusStore) Stats(ctx context.Context, tenantID int64) (core.StoreStats, error) {
	stats := core.StoreStats{TenantID: tenantID, Collection: s.collection, VectorDim: s.dim}

	if err := s.EnsureCollection(ctx); err != nil {
		return stats, err
	}

	queryOpt := milvusclient.NewQueryOption(s.collection).
		WithFilter(fmt.Sprintf("%s == %d", FieldTenantID, tenantID)).
		WithOutputFields("count(*)")
	rs, err := s.client.Query(ctx, queryOpt)
	if err != nil {
		return stats, fmt.Errorf("%w: failed to count points for tenant %d: %v", core.ErrUpstream, tenantID, err)
	}

	countCol := rs.GetColumn("count(*)")
	if countCol != nil && countCol.Len() > 0 {
		if n, err := countCol.GetAsInt64(0); err == nil {
			stats.PointCount = n
		}
	}
	stats.StoreStatus = "connected"
	return stats, nil
}

// Ping verifies the Milvus connection.
func (s *MilvusStore) Ping(ctx context.Context) error {
	if _, err := s.client.ListCollections(ctx, milvusclient.NewListCollectionOption()); err != nil {
		return fmt.Errorf("%w: milvus unreachable: %v", core.ErrUpstream, err)
	}
	return nil
}

// Close closes the connection to Milvus.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// Dimension returns the collection's configured vector dimension.
func (s *MilvusStore) Dimension() int { return s.dim }

// buildFilterExpr renders the mandatory tenant predicate AND-combined with
// caller filters. Schema fields filter directly; any other key targets the
// metadata JSON payload. Keys are sorted so the expression is deterministic.
func buildFilterExpr(tenantID int64, filters map[string]interface{}) string {
	conditions := []string{fmt.Sprintf("%s == %d", FieldTenantID, tenantID)}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		field := k
		if !isSchemaField(k) {
			field = fmt.Sprintf(`%s["%s"]`, FieldMetadata, k)
		}
		switch v := filters[k].(type) {
		case string:
			conditions = append(conditions, fmt.Sprintf(`%s == "%s"`, field, escapeString(v)))
		case bool:
			conditions = append(conditions, fmt.Sprintf("%s == %t", field, v))
		case float64:
			conditions = append(conditions, fmt.Sprintf("%s == %v", field, v))
		case float32:
			conditions = append(conditions, fmt.Sprintf("%s == %v", field, v))
		case int:
			conditions = append(conditions, fmt.Sprintf("%s == %d", field, v))
		case int64:
			conditions = append(conditions, fmt.Sprintf("%s == %d", field, v))
		default:
			conditions = append(conditions, fmt.Sprintf(`%s == "%v"`, field, v))
		}
	}
	return strings.Join(conditions, " and ")
}

func isSchemaField(name string) bool {
	switch name {
	case FieldID, FieldTenantID, FieldDocumentID, FieldChunkIndex, FieldText:
		return true
	}
	return false
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func getString(col column.Column, i int) string {
	if col == nil {
		return ""
	}
	v, err := col.GetAsString(i)
	if err != nil {
		return ""
	}
	return v
}

func getInt64(col column.Column, i int) int64 {
	if col == nil {
		return 0
	}
	v, err := col.GetAsInt64(i)
	if err != nil {
		return 0
	}
	return v
}
