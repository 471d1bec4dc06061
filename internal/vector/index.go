package vector

import (
	"context"
	"fmt"
	"log/slog"
)

// The index is double-buffered across two Weaviate classes. Rebuilds write
// the inactive class and flip the persisted pointer only once the new build
// is complete, so a crash mid-rebuild leaves the previous index serving.
const (
	ClassA = "KnowledgeChunkA"
	ClassB = "KnowledgeChunkB"
)

// Entry is one persisted index record: an embedding vector plus the chunk
// text and its provenance.
type Entry struct {
	Vector     []float32
	Content    string
	Source     string
	Page       int
	ChunkIndex int
}

// SearchResult is a retrieved chunk, highest similarity first.
type SearchResult struct {
	Content string
	Source  string
	Page    int
	Score   float32
}

// Store is the class-scoped persistence boundary implemented by the Weaviate
// adapter.
type Store interface {
	ReplaceAll(ctx context.Context, class string, entries []Entry) error
	Search(ctx context.Context, class string, vector []float32, k int) ([]SearchResult, error)
	Purge(ctx context.Context, class string) error
	Count(ctx context.Context, class string) (int, error)
}

// State persists which class currently serves queries.
type State interface {
	Active(ctx context.Context) (string, error)
	SetActive(ctx context.Context, class string) error
}

// Index is the searchable chunk index handed to the answer engine and the
// ingestion pipeline. It resolves the active class per call, so a serving
// process observes a completed rebuild without restarting.
type Index struct {
	store Store
	state State
}

func NewIndex(store Store, state State) *Index {
	return &Index{store: store, state: state}
}

// Rebuild atomically replaces the whole index: build into the inactive
// class, flip the pointer, then purge the superseded class best-effort.
func (ix *Index) Rebuild(ctx context.Context, entries []Entry) error {
	active, err := ix.state.Active(ctx)
	if err != nil {
		return fmt.Errorf("resolving active index class: %w", err)
	}
	target := Inactive(active)

	if err := ix.store.ReplaceAll(ctx, target, entries); err != nil {
		return fmt.Errorf("building index class %s: %w", target, err)
	}
	if err := ix.state.SetActive(ctx, target); err != nil {
		return fmt.Errorf("activating index class %s: %w", target, err)
	}
	slog.InfoContext(ctx, "index rebuilt", "class", target, "entries", len(entries))

	// The pointer already moved; leftover data in the old class is only a
	// space cost and will be overwritten by the next rebuild anyway.
	if err := ix.store.Purge(ctx, active); err != nil {
		slog.WarnContext(ctx, "failed to purge previous index class", "class", active, "error", err)
	}
	return nil
}

func (ix *Index) Search(ctx context.Context, vec []float32, k int) ([]SearchResult, error) {
	active, err := ix.state.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving active index class: %w", err)
	}
	return ix.store.Search(ctx, active, vec, k)
}

func (ix *Index) Count(ctx context.Context) (int, error) {
	active, err := ix.state.Active(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolving active index class: %w", err)
	}
	return ix.store.Count(ctx, active)
}

// Inactive returns the class a rebuild should write into.
func Inactive(active string) string {
	if active == ClassA {
		return ClassB
	}
	return ClassA
}
