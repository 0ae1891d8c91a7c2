package resume

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/parser"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/text"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

// Rebuilder replaces the active index wholesale with a fresh one built from
// the given chunks.
type Rebuilder interface {
	Rebuild(ctx context.Context, chunks []text.Chunk) (*vector.Index, error)
}

type EventSink interface {
	ResumeIndexed(ctx context.Context, docID string, chunks int)
}

type IngestResult struct {
	DocID  string `json:"doc_id"`
	Chunks int    `json:"chunks"`
	Pages  int    `json:"pages_indexed"`
}

type Service struct {
	indexes Rebuilder
	events  EventSink

	chunkMaxChars int
	chunkOverlap  int
	parserOpts    parser.Options
}

func NewService(indexes Rebuilder, events EventSink, chunkMaxChars, chunkOverlap int, parserOpts parser.Options) *Service {
	return &Service{
		indexes:       indexes,
		events:        events,
		chunkMaxChars: chunkMaxChars,
		chunkOverlap:  chunkOverlap,
		parserOpts:    parserOpts,
	}
}

// Ingest extracts the resume text, chunks it and rebuilds the index. Any
// previously indexed resume is replaced in full.
func (s *Service) Ingest(ctx context.Context, r io.Reader, filename string) (*IngestResult, error) {
	doc, err := parser.Extract(r, filename, s.parserOpts)
	if err != nil {
		return nil, err
	}

	chunks := text.ChunkText(doc.Text, s.chunkMaxChars, s.chunkOverlap)
	if len(chunks) == 0 {
		return nil, parser.ErrNoText
	}
	slog.InfoContext(ctx, "resume extracted", "filename", filename, "pages", doc.Pages, "chunks", len(chunks))

	ix, err := s.indexes.Rebuild(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("index resume: %w", err)
	}

	result := &IngestResult{
		DocID:  uuid.New().String(),
		Chunks: ix.Len(),
		Pages:  doc.Pages,
	}

	if s.events != nil {
		s.events.ResumeIndexed(ctx, result.DocID, result.Chunks)
	}
	return result, nil
}
