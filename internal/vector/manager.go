package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/text"
)

// ErrIndexAbsent is the expected "not yet indexed" condition, not a crash.
var ErrIndexAbsent = errors.New("no resume index available")

// Manager owns the swappable index handle. Rebuild constructs and persists a
// fresh index aside, then swaps it in atomically; readers take a snapshot via
// Current and keep using it for the whole search, so a concurrent rebuild can
// never hand them a torn index.
type Manager struct {
	embedder Embedder
	dir      string

	active    atomic.Pointer[Index]
	rebuildMu sync.Mutex
}

func NewManager(embedder Embedder, dir string) *Manager {
	return &Manager{embedder: embedder, dir: dir}
}

// Current returns the active index snapshot, or ErrIndexAbsent.
func (m *Manager) Current() (*Index, error) {
	ix := m.active.Load()
	if ix == nil {
		return nil, ErrIndexAbsent
	}
	return ix, nil
}

// Rebuild replaces the corpus wholesale: embed, persist both artifacts, swap.
// The old index stays visible to readers until the swap.
func (m *Manager) Rebuild(ctx context.Context, chunks []text.Chunk) (*Index, error) {
	m.rebuildMu.Lock()
	defer m.rebuildMu.Unlock()

	ix, err := Build(ctx, m.embedder, chunks)
	if err != nil {
		return nil, err
	}

	if err := Save(m.dir, ix); err != nil {
		return nil, fmt.Errorf("rebuild: %w", err)
	}

	m.active.Store(ix)
	slog.InfoContext(ctx, "index rebuilt", "chunks", ix.Len(), "dimension", ix.Dimension())
	return ix, nil
}

// LoadFromDisk restores a previously persisted index at startup. Absence of
// the artifact pair is a normal cold start and returns false without error.
func (m *Manager) LoadFromDisk() (bool, error) {
	ix, err := Load(m.dir)
	if err != nil {
		return false, err
	}
	if ix == nil {
		return false, nil
	}
	m.active.Store(ix)
	return true, nil
}

func (m *Manager) ChunkCount() int {
	return m.active.Load().Len()
}

func (m *Manager) Dimension() int {
	return m.active.Load().Dimension()
}
