// Package vector holds the in-process exact nearest-neighbor index over the
// resume corpus: L2-normalized embeddings searched by inner product, which on
// unit vectors equals cosine similarity.
package vector

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/text"
)

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is immutable after construction. Its vectors and chunk metadata are
// positionally aligned; reordering one without the other corrupts search.
type Index struct {
	dim     int
	vectors [][]float32
	meta    []text.Chunk
}

// Hit is one search result: the position into the metadata sequence and the
// inner-product score.
type Hit struct {
	Position int
	Score    float32
}

// Build embeds all chunk texts in one batch call, normalizes every vector and
// constructs the index. The chunk order defines the internal vector order.
func Build(ctx context.Context, embedder Embedder, chunks []text.Chunk) (*Index, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("build index: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dim := 0
	for i := range vectors {
		if dim == 0 {
			dim = len(vectors[i])
		} else if len(vectors[i]) != dim {
			return nil, fmt.Errorf("build index: inconsistent dimensions %d and %d", dim, len(vectors[i]))
		}
		Normalize(vectors[i])
	}

	meta := make([]text.Chunk, len(chunks))
	copy(meta, chunks)

	return &Index{dim: dim, vectors: vectors, meta: meta}, nil
}

// Search returns up to topK hits ranked by descending inner product. Asking
// for more hits than the index holds is not an error; an empty index yields
// an empty result.
func (ix *Index) Search(query []float32, topK int) []Hit {
	if ix == nil || len(ix.vectors) == 0 || topK <= 0 {
		return nil
	}

	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Position: i, Score: dot(query, v)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits
}

// Chunk returns the metadata aligned with a hit position.
func (ix *Index) Chunk(position int) text.Chunk {
	return ix.meta[position]
}

// Chunks returns a copy of the indexed chunk metadata in insertion order.
func (ix *Index) Chunks() []text.Chunk {
	if ix == nil {
		return nil
	}
	out := make([]text.Chunk, len(ix.meta))
	copy(out, ix.meta)
	return out
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.vectors)
}

func (ix *Index) Dimension() int {
	if ix == nil {
		return 0
	}
	return ix.dim
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}
