// Package search exposes semantic and keyword lookups over the resume index.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/middleware"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/retrieval"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

const defaultTopK = 5

type SemanticSearcher interface {
	SemanticSearch(ctx context.Context, query string, topK int) ([]retrieval.Evidence, error)
}

type IndexSource interface {
	Current() (*vector.Index, error)
}

type Handler struct {
	searcher SemanticSearcher
	indexes  IndexSource
}

func NewHandler(searcher SemanticSearcher, indexes IndexSource) *Handler {
	return &Handler{searcher: searcher, indexes: indexes}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
	Mode  string `json:"mode"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "query is required", http.StatusBadRequest)
		return
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	switch req.Mode {
	case "", "semantic":
		h.semantic(w, r, req)
	case "keyword":
		h.keyword(w, r, req)
	default:
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "unknown search mode: "+req.Mode, http.StatusBadRequest)
	}
}

func (h *Handler) semantic(w http.ResponseWriter, r *http.Request, req searchRequest) {
	results, err := h.searcher.SemanticSearch(r.Context(), req.Query, req.TopK)
	if err != nil {
		if errors.Is(err, vector.ErrIndexAbsent) {
			h.writeError(r.Context(), w, "NO_INDEX", "no resume indexed yet, upload a CV first", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "semantic search failed", "error", err)
		h.writeError(r.Context(), w, "UPSTREAM_ERROR", "search failed", http.StatusBadGateway)
		return
	}
	h.writeResults(r.Context(), w, results)
}

func (h *Handler) keyword(w http.ResponseWriter, r *http.Request, req searchRequest) {
	ix, err := h.indexes.Current()
	if err != nil {
		h.writeError(r.Context(), w, "NO_INDEX", "no resume indexed yet, upload a CV first", http.StatusNotFound)
		return
	}
	h.writeResults(r.Context(), w, retrieval.KeywordSearch(ix.Chunks(), req.Query, req.TopK))
}

func (h *Handler) writeResults(ctx context.Context, w http.ResponseWriter, results interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": results}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode error response", "error", err)
	}
}
