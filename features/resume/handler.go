package resume

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/middleware"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/parser"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

// IndexInfo reports on the currently active index.
type IndexInfo interface {
	Current() (*vector.Index, error)
}

type Handler struct {
	service       *Service
	indexes       IndexInfo
	maxUploadSize int64
}

func NewHandler(service *Service, indexes IndexInfo, maxUploadSizeMB int64) *Handler {
	return &Handler{service: service, indexes: indexes, maxUploadSize: maxUploadSizeMB << 20}
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "file too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !parser.SupportedExtensions[ext] {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "unsupported file type: "+ext, http.StatusBadRequest)
		return
	}

	result, err := h.service.Ingest(r.Context(), file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrNoText):
			h.writeError(r.Context(), w, "EXTRACTION_ERROR", "document yields no usable text", http.StatusUnprocessableEntity)
		case errors.Is(err, parser.ErrUnsupported):
			h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		default:
			slog.ErrorContext(r.Context(), "resume ingestion failed", "error", err, "filename", header.Filename)
			h.writeError(r.Context(), w, "UPSTREAM_ERROR", "failed to index resume", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": result}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Indexed bool `json:"indexed"`
		Chunks  int  `json:"chunks"`
	}{}

	if ix, err := h.indexes.Current(); err == nil {
		resp.Indexed = true
		resp.Chunks = ix.Len()
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
