package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimoire/internal/domain"
	"grimoire/internal/vectorstore"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Name() string                  { return "fake" }
func (fakeEmbedder) Prepare(corpus []string) error { return nil }
func (fakeEmbedder) Dimension() int                { return 1 }
func (fakeEmbedder) Embed(text string) ([]float64, error) {
	return []float64{1}, nil
}

type fakeStore struct {
	results []domain.SearchResult
	queries int
}

func (f *fakeStore) Init(dimension int) error { return nil }
func (f *fakeStore) IndexEntry(entry domain.ChunkedEntry, vectors [][]float64) error {
	return nil
}
func (f *fakeStore) Query(vector []float64, entryName string, topK int) ([]domain.SearchResult, error) {
	f.queries++
	return f.results, nil
}
func (f *fakeStore) Clear() error { return nil }
func (f *fakeStore) Close() error { return nil }

func result(context string, position int, score float64) domain.SearchResult {
	return domain.SearchResult{ContextText: context, ChunkText: context, Position: position, Score: score}
}

func TestSearchRequiresEntryName(t *testing.T) {
	store := &fakeStore{}
	r := NewReranker(fakeEmbedder{}, store, nil)

	_, err := r.Search("how much damage", "", 0.5, 0.4, 3)
	assert.ErrorIs(t, err, vectorstore.ErrNoEntryName)
	assert.Zero(t, store.queries, "no store query may be issued")
}

func TestFailoverPromotedWhenPrimaryEmpty(t *testing.T) {
	store := &fakeStore{results: []domain.SearchResult{
		result("The hand vanishes after a minute.", 1, 0.44),
		result("A spectral hand appears.", 0, 0.42),
	}}
	r := NewReranker(fakeEmbedder{}, store, nil)

	answer, err := r.Search("what is it", "Mage Hand", 0.5, 0.4, 3)
	require.NoError(t, err)
	assert.Equal(t, "According to Mage Hand: A spectral hand appears. The hand vanishes after a minute.", answer)
}

func TestBelowMinScoreDropped(t *testing.T) {
	store := &fakeStore{results: []domain.SearchResult{
		result("Irrelevant text.", 0, 0.1),
	}}
	r := NewReranker(fakeEmbedder{}, store, nil)

	answer, err := r.Search("what is it", "Mage Hand", 0.5, 0.4, 3)
	require.NoError(t, err)
	assert.Equal(t, NoResultsResponse, answer)
}

func TestDeduplicationKeepsHighestScore(t *testing.T) {
	store := &fakeStore{results: []domain.SearchResult{
		result("Each creature takes 8d6 fire damage.", 1, 0.9),
		result("Each creature takes 8d6 fire damage.", 1, 0.7),
		result("A bright streak flashes.", 0, 0.8),
	}}
	r := NewReranker(fakeEmbedder{}, store, nil)

	answer, err := r.Search("tell me about fireball", "Fireball", 0.5, 0.4, 3)
	require.NoError(t, err)
	assert.Equal(t, "According to Fireball: A bright streak flashes. Each creature takes 8d6 fire damage.", answer)
}

func TestMaxResultsTruncation(t *testing.T) {
	store := &fakeStore{results: []domain.SearchResult{
		result("First sentence.", 0, 0.9),
		result("Second sentence.", 1, 0.8),
		result("Third sentence.", 2, 0.7),
	}}
	r := NewReranker(fakeEmbedder{}, store, nil)

	answer, err := r.Search("tell me", "Entry", 0.5, 0.4, 2)
	require.NoError(t, err)
	assert.Equal(t, "According to Entry: First sentence. Second sentence.", answer)
}

func TestAnswerRestoresReadingOrder(t *testing.T) {
	store := &fakeStore{results: []domain.SearchResult{
		result("It detonates with a low roar.", 2, 0.95),
		result("A bright streak flashes from your finger.", 0, 0.6),
	}}
	r := NewReranker(fakeEmbedder{}, store, nil)

	answer, err := r.Search("what happens", "Fireball", 0.5, 0.4, 3)
	require.NoError(t, err)
	assert.Equal(t, "According to Fireball: A bright streak flashes from your finger. It detonates with a low roar.", answer)
}

func TestDieRollBoost(t *testing.T) {
	// Raw scores put the die-roll sentence below the flavor text; the
	// damage boost must flip the order and lift it over the bar.
	store := &fakeStore{results: []domain.SearchResult{
		result("A bright streak flashes.", 0, 0.45),
		result("Each creature takes 8d6 fire damage.", 1, 0.35),
	}}
	r := NewReranker(fakeEmbedder{}, store, nil)

	answer, err := r.Search("how much damage does fireball do", "Fireball", 0.5, 0.4, 1)
	require.NoError(t, err)
	assert.Equal(t, "According to Fireball: Each creature takes 8d6 fire damage.", answer)
}

func TestKeywordBoostRules(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		sentence string
		want     float64
	}{
		{"die roll", "how much damage", "Each creature takes 8d6 fire damage.", 0.2},
		{"no die roll", "how much damage", "A bright streak flashes.", 0},
		{"quantity digit", "how many darts", "The spell creates 3 glowing darts.", 0.2},
		{"quantity excludes level above", "how many darts", "increases for each slot level above 2.", 0},
		{"quantity excludes elemental count", "how many targets", "It deals 8 fire damage.", 0},
		{"quantity word number", "how many darts", "The spell creates three darts.", 0.2},
		{"quantity excludes ordinal level word", "how many spells", "You must be level three to cast this.", 0},
		{"saving throw", "does it allow a save", "Make a dexterity saving throw.", 0.2},
		{"area", "what is the radius", "Each creature in a 20-foot-radius sphere.", 0.2},
		{"stacking", "how many dice of damage", "Roll 8d6: 8 dice of fire.", 0.4},
		{"none", "what school is it", "A bright streak flashes.", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, keywordBoost(tc.query, tc.sentence), 1e-9)
		})
	}
}
