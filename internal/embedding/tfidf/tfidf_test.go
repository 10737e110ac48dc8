package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareAndEmbed(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"Each creature takes 8d6 fire damage.",
		"A bright streak flashes.",
	}))
	assert.Greater(t, e.Dimension(), 0)

	vec, err := e.Embed("how much fire damage")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	norm := 0.0
	nonzero := false
	for _, v := range vec {
		norm += v * v
		if v != 0 {
			nonzero = true
		}
	}
	assert.True(t, nonzero)
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestDieRollTokensSurvive(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"Each creature takes 8d6 fire damage."}))
	_, ok := e.vocabulary["8d6"]
	assert.True(t, ok, "die-roll tokens must be part of the vocabulary")
}

func TestEmbedBeforePrepareFails(t *testing.T) {
	e := NewEmbedder()
	_, err := e.Embed("anything")
	assert.Error(t, err)
}

func TestUnknownTokensEmbedToZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"alpha beta gamma"}))
	vec, err := e.Embed("zzz qqq")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}
