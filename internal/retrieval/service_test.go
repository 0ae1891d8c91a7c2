package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/text"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

// fakeEmbedder serves canned unit vectors and counts batch calls so tests can
// prove which queries were actually issued.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no canned vector for %q", t)
		}
		cp := make([]float32, len(v))
		copy(cp, v)
		out[i] = cp
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeEmbedder) {
	t.Helper()

	fe := &fakeEmbedder{vectors: map[string][]float32{
		// Chunk texts.
		"kubernetes deployments": {1, 0, 0},
		"python data pipelines":  {0, 1, 0},
		"terraform modules":      {0, 0.8, 0.6},
		"sql reporting":          {0, 0, 1},
		// Queries.
		"python": {0, 1, 0},
		"sql":    {0, 0, 1},
	}}

	chunks := []text.Chunk{
		{ID: "chunk_0", Text: "kubernetes deployments", Start: 0, End: 22},
		{ID: "chunk_1", Text: "python data pipelines", Start: 22, End: 43},
		{ID: "chunk_2", Text: "terraform modules", Start: 43, End: 60},
		{ID: "chunk_3", Text: "sql reporting", Start: 60, End: 73},
	}

	m := vector.NewManager(fe, t.TempDir())
	_, err := m.Rebuild(context.Background(), chunks)
	require.NoError(t, err)
	fe.calls = 0 // only count query embeddings from here on

	return NewService(fe, m, nil), fe
}

func TestSemanticSearch(t *testing.T) {
	t.Run("Ranked Results", func(t *testing.T) {
		svc, _ := newTestService(t)
		results, err := svc.SemanticSearch(context.Background(), "python", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "chunk_1", results[0].ChunkID)
		assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
		assert.Equal(t, "chunk_2", results[1].ChunkID)
	})

	t.Run("Index Absent", func(t *testing.T) {
		fe := &fakeEmbedder{vectors: map[string][]float32{}}
		svc := NewService(fe, vector.NewManager(fe, t.TempDir()), nil)
		_, err := svc.SemanticSearch(context.Background(), "anything", 3)
		assert.ErrorIs(t, err, vector.ErrIndexAbsent)
		assert.Zero(t, fe.calls, "no embedding call without an index")
	})

	t.Run("Preview Truncation", func(t *testing.T) {
		long := strings.Repeat("z", 400)
		fe := &fakeEmbedder{vectors: map[string][]float32{long: {1, 0}, "q": {1, 0}}}
		m := vector.NewManager(fe, t.TempDir())
		_, err := m.Rebuild(context.Background(), []text.Chunk{{ID: "chunk_0", Text: long, Start: 0, End: 400}})
		require.NoError(t, err)

		svc := NewService(fe, m, nil)
		results, err := svc.SemanticSearch(context.Background(), "q", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Len(t, results[0].Preview, 353)
		assert.True(t, strings.HasSuffix(results[0].Preview, "..."))
		assert.Equal(t, long, results[0].Text)
	})

	t.Run("Preview Truncates On Rune Boundary", func(t *testing.T) {
		long := strings.Repeat("é", 400)
		fe := &fakeEmbedder{vectors: map[string][]float32{long: {1, 0}, "q": {1, 0}}}
		m := vector.NewManager(fe, t.TempDir())
		_, err := m.Rebuild(context.Background(), []text.Chunk{{ID: "chunk_0", Text: long, Start: 0, End: 400}})
		require.NoError(t, err)

		svc := NewService(fe, m, nil)
		results, err := svc.SemanticSearch(context.Background(), "q", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, utf8.ValidString(results[0].Preview))
		assert.Equal(t, strings.Repeat("é", 350)+"...", results[0].Preview)
	})
}

func TestBuildEvidence(t *testing.T) {
	t.Run("Dedup Across Queries", func(t *testing.T) {
		svc, _ := newTestService(t)
		items, err := svc.BuildEvidence(context.Background(), []string{"python", "python"}, 2, 10)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "chunk_1", items[0].ChunkID)
		assert.Equal(t, "chunk_2", items[1].ChunkID)
	})

	t.Run("Cap Reached Mid Query", func(t *testing.T) {
		svc, _ := newTestService(t)
		items, err := svc.BuildEvidence(context.Background(), []string{"python", "sql"}, 3, 4)
		require.NoError(t, err)

		require.Len(t, items, 4)
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ChunkID
		}
		// First query contributes its full top-3, the second stops at the cap.
		assert.Equal(t, []string{"chunk_1", "chunk_2", "chunk_0", "chunk_3"}, ids)
	})

	t.Run("Early Stop Skips Remaining Queries", func(t *testing.T) {
		svc, fe := newTestService(t)
		items, err := svc.BuildEvidence(context.Background(), []string{"python", "sql"}, 3, 3)
		require.NoError(t, err)
		assert.Len(t, items, 3)
		assert.Equal(t, 1, fe.calls, "the sql query must never be embedded once the cap is hit")
	})

	t.Run("Never Exceeds Cap", func(t *testing.T) {
		svc, _ := newTestService(t)
		items, err := svc.BuildEvidence(context.Background(), []string{"python", "sql"}, 4, 2)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("Empty Queries", func(t *testing.T) {
		svc, fe := newTestService(t)
		items, err := svc.BuildEvidence(context.Background(), nil, 3, 10)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Zero(t, fe.calls)
	})

	t.Run("No Duplicate IDs Ever", func(t *testing.T) {
		svc, _ := newTestService(t)
		items, err := svc.BuildEvidence(context.Background(), []string{"python", "sql", "python"}, 4, 10)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, it := range items {
			assert.False(t, seen[it.ChunkID], "duplicate %s", it.ChunkID)
			seen[it.ChunkID] = true
		}
	})
}

func TestFormatEvidence(t *testing.T) {
	items := []Evidence{
		{ChunkID: "chunk_0", Text: "led platform migration"},
		{ChunkID: "chunk_3", Text: "built sql reporting"},
	}
	block := FormatEvidence(items)
	assert.Equal(t, "- [chunk_0] led platform migration\n- [chunk_3] built sql reporting", block)

	assert.Empty(t, FormatEvidence(nil))
}
