package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"knowpilot/backend/internal/text"
	"knowpilot/backend/internal/vector"
)

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Index interface {
	Rebuild(ctx context.Context, entries []vector.Entry) error
}

// Pipeline is the offline ingestion run: load documents, split them into
// overlapping chunks, embed, and rebuild the vector index wholesale. Any
// failure aborts the run with the previous index left serving.
type Pipeline struct {
	loader    *Loader
	splitter  *text.Splitter
	embedder  Embedder
	index     Index
	batchSize int
}

func NewPipeline(loader *Loader, splitter *text.Splitter, embedder Embedder, index Index, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Pipeline{
		loader:    loader,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
	}
}

func (p *Pipeline) Run(ctx context.Context) error {
	docs, err := p.loader.Load(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "documents loaded", "count", len(docs))

	var entries []vector.Entry
	for _, doc := range docs {
		for i, piece := range p.splitter.Split(doc.Text) {
			entries = append(entries, vector.Entry{
				Content:    piece.Content,
				Source:     doc.Path,
				Page:       doc.Page,
				ChunkIndex: i,
			})
		}
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: documents contained no text", ErrNoDocuments)
	}
	slog.InfoContext(ctx, "chunks produced", "count", len(entries))

	for start := 0; start < len(entries); start += p.batchSize {
		end := start + p.batchSize
		if end > len(entries) {
			end = len(entries)
		}

		texts := make([]string, 0, end-start)
		for _, e := range entries[start:end] {
			texts = append(texts, e.Content)
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedding chunks %d-%d: got %d vectors for %d inputs", start, end-1, len(vectors), len(texts))
		}
		for i := range vectors {
			entries[start+i].Vector = vectors[i]
		}
		slog.InfoContext(ctx, "chunks embedded", "done", end, "total", len(entries))
	}

	if err := p.index.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	slog.InfoContext(ctx, "ingestion complete", "entries", len(entries))
	return nil
}
