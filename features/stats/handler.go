package stats

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

type IndexSource interface {
	Current() (*vector.Index, error)
}

type Handler struct {
	indexes IndexSource
}

func NewHandler(indexes IndexSource) *Handler {
	return &Handler{indexes: indexes}
}

type StatsResponse struct {
	Indexed   bool `json:"indexed"`
	Chunks    int  `json:"chunks"`
	Dimension int  `json:"dimension"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	if ix, err := h.indexes.Current(); err == nil {
		resp = StatsResponse{Indexed: true, Chunks: ix.Len(), Dimension: ix.Dimension()}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
