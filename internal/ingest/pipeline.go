package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/loader"
	"github.com/contexta-ai/contexta/internal/logger"
)

// Request triggers ingestion of one document.
type Request struct {
	DocumentID  int64                  `json:"document_id"`
	FilePath    string                 `json:"file_path"`
	TenantID    int64                  `json:"tenant_id"`
	Metadata    map[string]interface{} `json:"metadata"`
	CallbackURL string                 `json:"callback_url,omitempty"`
}

// Callback statuses reported to the ingestion consumer.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// CompletionPayload is posted to the callback URL when ingestion finishes.
// ChunksCreated is present only on success.
type CompletionPayload struct {
	DocumentID    int64  `json:"document_id"`
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created,omitempty"`
}

// Pipeline sequences load, chunk, embed and store for one document and owns
// failure classification. It keeps no intermediate state: a crash
// mid-pipeline leaves nothing for a retry to resume, and re-submission
// writes a fresh set of points.
type Pipeline struct {
	loaders  *loader.Registry
	chunker  core.Chunker
	embedder core.Embedder
	store    core.VectorStore
	notifier core.Notifier
}

// NewPipeline wires the ingestion pipeline. All collaborators are explicit;
// nothing is reached through global state.
func NewPipeline(loaders *loader.Registry, chunker core.Chunker, embedder core.Embedder, store core.VectorStore, notifier core.Notifier) *Pipeline {
	return &Pipeline{
		loaders:  loaders,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		notifier: notifier,
	}
}

// Submit runs ingestion in the background, decoupled from the caller.
// There is no cancellation: a started ingestion runs to completion or
// failure, and concurrent submissions for the same document may interleave
// writes.
func (p *Pipeline) Submit(req Request) {
	go func() {
		if err := p.Ingest(context.Background(), req); err != nil {
			logger.Error("Ingestion of document %d (tenant %d) failed: %v", req.DocumentID, req.TenantID, err)
		}
	}()
}

// Ingest runs the full pipeline for one document. On any failure a "failed"
// notification is sent best-effort before the error is returned; on success
// a "completed" notification carries the chunk count.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (err error) {
	logger.Info("Starting ingestion for document %d (tenant %d)", req.DocumentID, req.TenantID)

	defer func() {
		if err != nil && req.CallbackURL != "" {
			p.notifier.Notify(ctx, req.CallbackURL, CompletionPayload{
				DocumentID: req.DocumentID,
				Status:     StatusFailed,
			})
		}
	}()

	text, fileType, err := p.loaders.Load(ctx, req.FilePath)
	if err != nil {
		return fmt.Errorf("document %d: %w", req.DocumentID, err)
	}
	logger.Debug("Loaded %d characters from document %d (type %s)", len(text), req.DocumentID, fileType)

	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: document %d is empty", core.ErrInvalidInput, req.DocumentID)
	}

	chunks, err := p.chunker.Chunk(text)
	if err != nil {
		return fmt.Errorf("document %d: %w", req.DocumentID, err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks created from document %d", core.ErrInvalidInput, req.DocumentID)
	}
	logger.Info("Created %d chunks from document %d", len(chunks), req.DocumentID)

	embeddings, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("document %d: %w", req.DocumentID, err)
	}
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: document %d produced %d chunks but %d embeddings", core.ErrInvalidInput, req.DocumentID, len(chunks), len(embeddings))
	}

	if err := p.store.Store(ctx, req.DocumentID, req.TenantID, chunks, embeddings, req.Metadata); err != nil {
		return fmt.Errorf("document %d: %w", req.DocumentID, err)
	}

	logger.Info("Document %d ingested successfully (tenant %d)", req.DocumentID, req.TenantID)

	if req.CallbackURL != "" {
		p.notifier.Notify(ctx, req.CallbackURL, CompletionPayload{
			DocumentID:    req.DocumentID,
			Status:        StatusCompleted,
			ChunksCreated: len(chunks),
		})
	}
	return nil
}
