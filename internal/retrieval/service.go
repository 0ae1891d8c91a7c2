// Package retrieval turns queries into ranked, deduplicated CV evidence.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

const previewLength = 350

// Evidence is one retrieval result. Within a single BuildEvidence call chunk
// IDs are unique.
type Evidence struct {
	ChunkID string  `json:"chunk_id"`
	Text    string  `json:"text"`
	Preview string  `json:"preview"`
	Score   float32 `json:"score"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
}

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexSource yields the current index snapshot, or vector.ErrIndexAbsent.
type IndexSource interface {
	Current() (*vector.Index, error)
}

type Service struct {
	embedder Embedder
	indexes  IndexSource
	logger   *QueryLogger
}

func NewService(embedder Embedder, indexes IndexSource, logger *QueryLogger) *Service {
	return &Service{embedder: embedder, indexes: indexes, logger: logger}
}

// SemanticSearch embeds the query, normalizes it and runs an exact
// nearest-neighbor search over the current index snapshot.
func (s *Service) SemanticSearch(ctx context.Context, query string, topK int) ([]Evidence, error) {
	start := time.Now()

	ix, err := s.indexes.Current()
	if err != nil {
		return nil, err
	}

	vecs, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors for one query", len(vecs))
	}
	qvec := vecs[0]
	vector.Normalize(qvec)

	hits := ix.Search(qvec, topK)
	results := make([]Evidence, 0, len(hits))
	for _, h := range hits {
		c := ix.Chunk(h.Position)
		results = append(results, Evidence{
			ChunkID: c.ID,
			Text:    c.Text,
			Preview: preview(c.Text),
			Score:   h.Score,
			Start:   c.Start,
			End:     c.End,
		})
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{Query: query, NumResults: len(results), Duration: time.Since(start)})
	}
	return results, nil
}

// BuildEvidence runs one semantic search per query in order, deduplicates by
// chunk ID (first occurrence wins) and stops the moment maxTotal items are
// collected, even mid-query. Remaining queries are never issued after the cap
// is reached, so results are biased toward earlier queries.
func (s *Service) BuildEvidence(ctx context.Context, queries []string, topKEach, maxTotal int) ([]Evidence, error) {
	seen := make(map[string]bool)
	var collected []Evidence

	for _, q := range queries {
		results, err := s.SemanticSearch(ctx, q, topKEach)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if seen[r.ChunkID] {
				continue
			}
			seen[r.ChunkID] = true
			collected = append(collected, r)
			if len(collected) >= maxTotal {
				return collected, nil
			}
		}
	}

	return collected, nil
}

// FormatEvidence renders items as the flat evidence block handed to prompts:
// one line per item, in collected order.
func FormatEvidence(items []Evidence) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- [%s] %s", item.ChunkID, item.Text))
	}
	return strings.Join(lines, "\n")
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return text
}
