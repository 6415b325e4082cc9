package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/logger"
	"github.com/contexta-ai/contexta/internal/query"
)

// QueryServer exposes the query pipeline over HTTP.
type QueryServer struct {
	service       *query.Service
	store         core.VectorStore
	llm           core.LLMService
	keyConfigured bool
}

// NewQueryServer builds the query-side HTTP surface. keyConfigured reports
// whether a provider credential was present at startup; health exposes it.
func NewQueryServer(service *query.Service, store core.VectorStore, llm core.LLMService, keyConfigured bool) *QueryServer {
	return &QueryServer{service: service, store: store, llm: llm, keyConfigured: keyConfigured}
}

// Handler returns the routed handler for the query server.
func (s *QueryServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /query", s.handleQuery)
	return mux
}

func (s *QueryServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "contexta-query",
		"model":   s.llm.ModelName(),
		"endpoints": []string{
			"POST /query",
			"GET /health",
		},
	})
}

func (s *QueryServer) handleHealth(w http.ResponseWriter, r *http.Request) {
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

func (s *QueryServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}
	if req.TenantID <= 0 {
		writeError(w, http.StatusBadRequest, "tenant_id must be positive")
		return
	}

	resp, err := s.service.Answer(r.Context(), req)
	if err != nil {
		logger.Error("Query failed for tenant %d: %v", req.TenantID, err)
		writeError(w, statusFor(err), "query failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
