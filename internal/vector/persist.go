package vector

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/text"
)

// The index persists as a pair of co-located artifacts: an opaque vector blob
// and a readable chunk metadata listing. Both must exist to count as present.
const (
	vectorsFile = "cv.index"
	metaFile    = "cv_chunks.json"
)

type indexBlob struct {
	Dim     int
	Vectors [][]float32
}

type chunkMeta struct {
	ChunkID string       `json:"chunk_id"`
	Text    string       `json:"text"`
	Meta    positionMeta `json:"meta"`
}

type positionMeta struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Save writes both artifacts under dir. Each file is written to a temp path
// and renamed into place, vectors first, so a crash mid-save leaves either the
// old pair or the new pair, never a torn one.
func Save(dir string, ix *Index) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	if err := writeVectors(filepath.Join(dir, vectorsFile), ix); err != nil {
		return err
	}
	return writeMeta(filepath.Join(dir, metaFile), ix)
}

// Load reads the persisted pair from dir. A missing artifact (either one)
// means "no index": it returns (nil, nil) so the system can start cold.
func Load(dir string) (*Index, error) {
	vPath := filepath.Join(dir, vectorsFile)
	mPath := filepath.Join(dir, metaFile)

	for _, p := range []string{vPath, mPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, nil
		} else if err != nil {
			return nil, fmt.Errorf("load index: %w", err)
		}
	}

	vf, err := os.Open(vPath) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	defer vf.Close()

	var blob indexBlob
	if err := gob.NewDecoder(vf).Decode(&blob); err != nil {
		return nil, fmt.Errorf("load index: decode vectors: %w", err)
	}

	raw, err := os.ReadFile(mPath) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	var metas []chunkMeta
	if err := json.Unmarshal(raw, &metas); err != nil {
		return nil, fmt.Errorf("load index: decode metadata: %w", err)
	}

	if len(metas) != len(blob.Vectors) {
		return nil, fmt.Errorf("load index: %d metadata entries for %d vectors", len(metas), len(blob.Vectors))
	}

	chunks := make([]text.Chunk, len(metas))
	for i, m := range metas {
		chunks[i] = text.Chunk{ID: m.ChunkID, Text: m.Text, Start: m.Meta.Start, End: m.Meta.End}
	}

	return &Index{dim: blob.Dim, vectors: blob.Vectors, meta: chunks}, nil
}

func writeVectors(path string, ix *Index) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cv-index-*")
	if err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(indexBlob{Dim: ix.dim, Vectors: ix.vectors}); err != nil {
		tmp.Close()
		return fmt.Errorf("save index: encode vectors: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func writeMeta(path string, ix *Index) error {
	metas := make([]chunkMeta, len(ix.meta))
	for i, c := range ix.meta {
		metas[i] = chunkMeta{ChunkID: c.ID, Text: c.Text, Meta: positionMeta{Start: c.Start, End: c.End}}
	}

	raw, err := json.MarshalIndent(metas, "", "  ")
	if err != nil {
		return fmt.Errorf("save index: encode metadata: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cv-chunks-*")
	if err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("save index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
