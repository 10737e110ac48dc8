package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimoire/internal/domain"
	"grimoire/internal/vectorstore"
)

func testEntry() domain.ChunkedEntry {
	return domain.ChunkedEntry{
		Name: "Fireball",
		ChunkContexts: []domain.ChunkContext{
			{Text: "A bright streak flashes.", Position: 0, Chunks: []domain.Chunk{{Text: "A bright streak flashes."}}},
			{Text: "Each creature takes 8d6 fire damage.", Position: 1, Chunks: []domain.Chunk{{Text: "Each creature takes 8d6 fire damage."}}},
		},
	}
}

func TestQueryScopedToEntry(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.IndexEntry(testEntry(), [][]float64{{1, 0}, {0, 1}}))
	require.NoError(t, s.IndexEntry(domain.ChunkedEntry{
		Name: "Shield",
		ChunkContexts: []domain.ChunkContext{
			{Text: "A barrier appears.", Position: 0, Chunks: []domain.Chunk{{Text: "A barrier appears."}}},
		},
	}, [][]float64{{0, 1}}))

	results, err := s.Query([]float64{0, 1}, "Fireball", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Each creature takes 8d6 fire damage.", results[0].ChunkText)
	assert.Equal(t, 1, results[0].Position)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestQueryRequiresEntryName(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	_, err := s.Query([]float64{1, 0}, "", 5)
	assert.ErrorIs(t, err, vectorstore.ErrNoEntryName)
}

func TestIndexEntryValidatesVectors(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	err := s.IndexEntry(testEntry(), [][]float64{{1, 0}})
	assert.Error(t, err, "too few vectors")
	err = s.IndexEntry(testEntry(), [][]float64{{1, 0, 0}, {0, 1, 0}})
	assert.Error(t, err, "wrong dimension")
}

func TestClear(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.IndexEntry(testEntry(), [][]float64{{1, 0}, {0, 1}}))
	require.NoError(t, s.Clear())
	results, err := s.Query([]float64{1, 0}, "Fireball", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
