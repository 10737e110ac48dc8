// Package memory provides an in-memory vector store using brute-force
// cosine similarity, keyed by entry name.
package memory

import (
	"errors"
	"sort"
	"sync"

	"grimoire/internal/domain"
	"grimoire/internal/vectorstore"
)

type row struct {
	contextText string
	chunkText   string
	position    int
	vector      []float64
}

// Storage is a simple in-memory vector store.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string][]row
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.entries = make(map[string][]row)
	return nil
}

// IndexEntry stores one chunked entry. Vectors align with the entry's
// chunks flattened in context order.
func (s *Storage) IndexEntry(entry domain.ChunkedEntry, vectors [][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		return errors.New("store not initialized")
	}
	rows := make([]row, 0, len(vectors))
	i := 0
	for _, ctx := range entry.ChunkContexts {
		for _, chunk := range ctx.Chunks {
			if i >= len(vectors) {
				return errors.New("chunks and vectors length mismatch")
			}
			if len(vectors[i]) != s.dimension {
				return errors.New("vector dimension mismatch")
			}
			rows = append(rows, row{
				contextText: ctx.Text,
				chunkText:   chunk.Text,
				position:    ctx.Position,
				vector:      vectors[i],
			})
			i++
		}
	}
	if i != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.entries[entry.Name] = append(s.entries[entry.Name], rows...)
	return nil
}

// Query returns the topK nearest chunks within the named entry, best first.
func (s *Storage) Query(vector []float64, entryName string, topK int) ([]domain.SearchResult, error) {
	if entryName == "" {
		return nil, vectorstore.ErrNoEntryName
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	rows := s.entries[entryName]
	results := make([]domain.SearchResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, domain.SearchResult{
			ContextText: r.contextText,
			ChunkText:   r.chunkText,
			Position:    r.position,
			Score:       vectorstore.CosineSimilarity(r.vector, vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]row)
	return nil
}

func (s *Storage) Close() error { return nil }
