package core

// Chunk represents a bounded slice of a document's text, the unit of
// embedding and retrieval. Immutable once created.
type Chunk struct {
	Text       string                 `json:"text"`
	ChunkID    string                 `json:"chunk_id"`
	DocumentID int64                  `json:"document_id"`
	TenantID   int64                  `json:"tenant_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	StartIndex int                    `json:"start_index,omitempty"`
	EndIndex   int                    `json:"end_index,omitempty"`
}

// SearchResult represents a stored point matched by a similarity search.
// Higher score means more relevant (cosine similarity). Text, DocumentID and
// ChunkIndex are flattened out of the payload for convenience.
type SearchResult struct {
	ID         string                 `json:"id"`
	Score      float64                `json:"score"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Text       string                 `json:"text"`
	DocumentID int64                  `json:"document_id"`
	ChunkIndex int                    `json:"chunk_index"`
}

// DocumentMetadata is the document-management collaborator's view of a
// document. The ingestion pipeline only reads it.
type DocumentMetadata struct {
	DocumentID int64  `json:"document_id"`
	TenantID   int64  `json:"tenant_id"`
	FilePath   string `json:"file_path"`
	FileType   string `json:"file_type"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// StoreStats reports per-tenant statistics about the vector store.
type StoreStats struct {
	TenantID    int64  `json:"tenant_id"`
	PointCount  int64  `json:"point_count"`
	Collection  string `json:"collection"`
	VectorDim   int    `json:"vector_dim"`
	StoreStatus string `json:"store_status"`
}
