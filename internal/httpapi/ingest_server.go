package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/ingest"
	"github.com/contexta-ai/contexta/internal/logger"
)

// IngestServer exposes the ingestion pipeline over HTTP. Ingestion itself is
// asynchronous: POST /ingest answers 202 as soon as the request is accepted
// and the outcome is reported through the callback URL.
type IngestServer struct {
	pipeline      *ingest.Pipeline
	store         core.VectorStore
	keyConfigured bool
}

// NewIngestServer builds the ingestion-side HTTP surface.
func NewIngestServer(pipeline *ingest.Pipeline, store core.VectorStore, keyConfigured bool) *IngestServer {
	return &IngestServer{pipeline: pipeline, store: store, keyConfigured: keyConfigured}
}

// Handler returns the routed handler for the ingest server.
func (s *IngestServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("DELETE /documents", s.handleDeleteDocument)
	mux.HandleFunc("GET /stats", s.handleStats)
	return mux
}

func (s *IngestServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	storeStatus := "ok"
	if err := s.store.Ping(r.Context()); err != nil {
		logger.Warn("Health check: vector store unreachable: %v", err)
		status = "degraded"
		storeStatus = "unreachable"
	}
	if !s.keyConfigured {
		status = "degraded"
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"vector_store":   storeStatus,
		"openai_key_set": s.keyConfigured,
	})
}

func (s *IngestServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingest.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DocumentID <= 0 {
		writeError(w, http.StatusBadRequest, "document_id must be positive")
		return
	}
	if req.TenantID <= 0 {
		writeError(w, http.StatusBadRequest, "tenant_id must be positive")
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "file_path is required")
		return
	}

	s.pipeline.Submit(req)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":      "accepted",
		"document_id": req.DocumentID,
		"tenant_id":   req.TenantID,
	})
}

func (s *IngestServer) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := queryInt64(r, "document_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "document_id must be a positive integer")
		return
	}
	tenantID, err := queryInt64(r, "tenant_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "tenant_id must be a positive integer")
		return
	}

	if err := s.store.DeleteDocument(r.Context(), documentID, tenantID); err != nil {
		logger.Error("Delete of document %d (tenant %d) failed: %v", documentID, tenantID, err)
		writeError(w, statusFor(err), "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "deleted",
		"document_id": documentID,
		"tenant_id":   tenantID,
	})
}

func (s *IngestServer) handleStats(w http.ResponseWriter, r *http.Request) {
	tenantID, err := queryInt64(r, "tenant_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "tenant_id must be a positive integer")
		return
	}

	stats, err := s.store.Stats(r.Context(), tenantID)
	if err != nil {
		logger.Error("Stats for tenant %d failed: %v", tenantID, err)
		writeError(w, statusFor(err), "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt64(r *http.Request, key string) (int64, error) {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.New("must be positive")
	}
	return v, nil
}
