package domain

// RawEntry is one catalog item before chunking: a unique name and the
// concatenated source text to be indexed.
type RawEntry struct {
	Name string
	Text string
}

// Chunk is a sub-sentence fragment of a ChunkContext. It is the literal
// embedding target; its text is never empty.
type Chunk struct {
	Text string
}

// ChunkContext is a sentence-level unit of an entry's text. Position is
// 0-based and gapless within the owning entry, preserving reading order.
type ChunkContext struct {
	Text     string
	Position int
	Chunks   []Chunk
}

// ChunkedEntry is the output of chunking one RawEntry.
type ChunkedEntry struct {
	Name          string
	ChunkContexts []ChunkContext
}

// SearchResult is one nearest-neighbour hit for a query vector.
// Score is similarity, 1 - cosine distance.
type SearchResult struct {
	ContextText string
	ChunkText   string
	Position    int
	Score       float64
}

// Prediction is a labelled value produced by an extractor or resolved from
// conversation context. Confidence is 0..100 for entity predictions; intent
// classifiers report 0..1 and the two scales must not be mixed.
type Prediction struct {
	Label      string
	Value      string
	Confidence float64
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is a single turn in the conversation history.
type Message struct {
	Text string
	Role Role
}
