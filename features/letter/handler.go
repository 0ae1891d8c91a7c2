package letter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/UmutEmre17/cv-coverletter-agent/features/job"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/llmjson"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/middleware"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

type LetterGenerator interface {
	Generate(ctx context.Context, jobText, model string) (*Response, error)
}

type Handler struct {
	service LetterGenerator
}

func NewHandler(service LetterGenerator) *Handler {
	return &Handler{service: service}
}

type generateRequest struct {
	JobText string `json:"job_text"`
	Model   string `json:"model"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if len(strings.TrimSpace(req.JobText)) < job.MinJobTextLength {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "job_text is too short", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Generate(r.Context(), req.JobText, req.Model)
	if err != nil {
		switch {
		case errors.Is(err, vector.ErrIndexAbsent):
			h.writeError(r.Context(), w, "NO_INDEX", "no resume indexed yet, upload a CV first", http.StatusNotFound)
		case errors.Is(err, llmjson.ErrNoPayload), errors.Is(err, llmjson.ErrMalformedPayload):
			slog.ErrorContext(r.Context(), "unparseable model output", "error", err)
			h.writeError(r.Context(), w, "BAD_MODEL_OUTPUT", "model output contained no parseable payload", http.StatusBadGateway)
		default:
			slog.ErrorContext(r.Context(), "letter generation failed", "error", err)
			h.writeError(r.Context(), w, "UPSTREAM_ERROR", "cover letter generation failed", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
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
