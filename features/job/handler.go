package job

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/agent"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/llmjson"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/middleware"
)

type Analyzer interface {
	Analyze(ctx context.Context, jobText, model string) (agent.Requirements, error)
}

type Handler struct {
	service Analyzer
}

func NewHandler(service Analyzer) *Handler {
	return &Handler{service: service}
}

type analyzeRequest struct {
	JobText string `json:"job_text"`
	Model   string `json:"model"`
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if len(strings.TrimSpace(req.JobText)) < MinJobTextLength {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "job_text is too short", http.StatusBadRequest)
		return
	}

	requirements, err := h.service.Analyze(r.Context(), req.JobText, req.Model)
	if err != nil {
		switch {
		case errors.Is(err, llmjson.ErrNoPayload), errors.Is(err, llmjson.ErrMalformedPayload):
			slog.ErrorContext(r.Context(), "unparseable model output", "error", err)
			h.writeError(r.Context(), w, "BAD_MODEL_OUTPUT", "model output contained no parseable requirements", http.StatusBadGateway)
		default:
			slog.ErrorContext(r.Context(), "job analysis failed", "error", err)
			h.writeError(r.Context(), w, "UPSTREAM_ERROR", "failed to analyze job posting", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": requirements}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
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
