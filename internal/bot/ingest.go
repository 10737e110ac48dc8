package bot

import (
	"fmt"

	"go.uber.org/zap"

	"grimoire/internal/domain"
)

// Ingest runs the offline indexing pipeline: chunk every entry, prepare the
// embedder over the full chunk corpus, then embed and store each entry's
// chunks in one batch. Single writer; the store is read-only afterwards.
func Ingest(entries []domain.RawEntry, chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	chunked := chunker.ChunkEntries(entries)
	var corpus []string
	for _, entry := range chunked {
		for _, ctx := range entry.ChunkContexts {
			for _, chunk := range ctx.Chunks {
				corpus = append(corpus, chunk.Text)
			}
		}
	}
	if err := embedder.Prepare(corpus); err != nil {
		return fmt.Errorf("preparing embedder: %w", err)
	}
	// Remote embedders only learn their dimension from a response.
	dimension := embedder.Dimension()
	if dimension == 0 && len(corpus) > 0 {
		vec, err := embedder.Embed(corpus[0])
		if err != nil {
			return fmt.Errorf("probing embedding dimension: %w", err)
		}
		dimension = len(vec)
	}
	if err := store.Init(dimension); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	// Re-running ingestion replaces the index rather than appending to it.
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}

	for _, entry := range chunked {
		var vectors [][]float64
		for _, ctx := range entry.ChunkContexts {
			for _, chunk := range ctx.Chunks {
				vec, err := embedder.Embed(chunk.Text)
				if err != nil {
					return fmt.Errorf("embedding chunk of %q: %w", entry.Name, err)
				}
				vectors = append(vectors, vec)
			}
		}
		if err := store.IndexEntry(entry, vectors); err != nil {
			return fmt.Errorf("indexing %q: %w", entry.Name, err)
		}
		log.Info("indexed entry",
			zap.String("name", entry.Name),
			zap.Int("contexts", len(entry.ChunkContexts)),
			zap.Int("chunks", len(vectors)),
		)
	}
	return nil
}
