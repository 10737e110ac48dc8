package domain

// Chunker splits raw entries into sentence contexts and overlapping chunks
// suitable for embedding.
type Chunker interface {
	ChunkEntries(entries []RawEntry) []ChunkedEntry
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// VectorStore persists chunked entries with their embeddings and supports
// similarity search scoped to a single entry. Writes happen during an
// offline ingestion phase with a single writer; the store is read-only
// while serving.
type VectorStore interface {
	Init(dimension int) error
	IndexEntry(entry ChunkedEntry, vectors [][]float64) error
	Query(vector []float64, entryName string, topK int) ([]SearchResult, error)
	Clear() error
	Close() error
}

// IntentClassifier predicts a conversational intent for a message.
// Confidence is in [0,1]. An empty label means no intent was recognized.
type IntentClassifier interface {
	Predict(text string) (label string, confidence float64)
	Response(label string) (string, bool)
}

// EntityExtractor predicts labelled entity values for a message, ordered by
// the extractor's own preference. Confidence is in [0,100].
type EntityExtractor interface {
	Predict(text string) []Prediction
}
