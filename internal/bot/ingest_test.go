package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimoire/internal/chunker"
	"grimoire/internal/domain"
	"grimoire/internal/embedding/tfidf"
	"grimoire/internal/vectorstore/memory"
)

func TestIngestIndexesEveryEntry(t *testing.T) {
	ch, err := chunker.NewSentenceChunker(10)
	require.NoError(t, err)
	embedder := tfidf.NewEmbedder()
	store := memory.NewStorage()

	entries := []domain.RawEntry{
		{Name: "Mage Hand", Text: "A spectral floating hand appears at a point you choose within range."},
		{Name: "Shield", Text: "An invisible barrier of magical force protects you until your next turn."},
	}
	require.NoError(t, Ingest(entries, ch, embedder, store, nil))

	vec, err := embedder.Embed("spectral hand")
	require.NoError(t, err)
	results, err := store.Query(vec, "Mage Hand", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].ContextText, "spectral")

	results, err = store.Query(vec, "Shield", 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotContains(t, r.ContextText, "spectral")
	}
}

func TestIngestFailsOnEmptyCorpus(t *testing.T) {
	ch, err := chunker.NewSentenceChunker(10)
	require.NoError(t, err)

	err = Ingest(nil, ch, tfidf.NewEmbedder(), memory.NewStorage(), nil)
	assert.Error(t, err)
}
