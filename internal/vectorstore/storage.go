package vectorstore

import (
	"errors"
	"math"

	"grimoire/internal/domain"
)

// Store persists chunked entries with embeddings and supports per-entry
// similarity search.
type Store = domain.VectorStore

// ErrNoEntryName is returned when a query omits the entry name. Callers
// must resolve an entity before searching.
var ErrNoEntryName = errors.New("an entry name must be provided for search")

// CosineSimilarity computes the cosine similarity of two vectors, 0 when
// either vector is zero or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
