package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimoire/internal/catalog"
)

func testPatterns() []catalog.EntityPatterns {
	return []catalog.EntityPatterns{
		{Label: "SPELL", Patterns: []string{"fireball", "magic missile", "shield"}},
		{Label: "SCHOOL", Patterns: []string{"evocation", "abjuration"}},
		{Label: "SAVING_THROW", Patterns: []string{"dexterity saving throw", "wisdom saving throw"}},
		{Label: "LEVEL", Patterns: []string{"3rd level", "level 3", "cantrip"}},
	}
}

func predictionFor(t *testing.T, e *FuzzyExtractor, text, label string) (string, float64) {
	t.Helper()
	for _, p := range e.Predict(text) {
		if p.Label == label {
			return p.Value, p.Confidence
		}
	}
	t.Fatalf("no prediction for label %s", label)
	return "", 0
}

func TestExactMatchScoresFull(t *testing.T) {
	e := NewFuzzyExtractor(testPatterns())
	value, confidence := predictionFor(t, e, "what does fireball do", "SPELL")
	assert.Equal(t, "fireball", value)
	assert.InDelta(t, 100, confidence, 1e-9)
}

func TestNearMissScoresBelowFull(t *testing.T) {
	e := NewFuzzyExtractor(testPatterns())
	value, confidence := predictionFor(t, e, "what does firebal do", "SPELL")
	assert.Equal(t, "fireball", value)
	assert.Less(t, confidence, 100.0)
	assert.Greater(t, confidence, 80.0)
}

func TestSavingThrowKeyValue(t *testing.T) {
	e := NewFuzzyExtractor(testPatterns())
	value, _ := predictionFor(t, e, "does it need a dexterity saving throw", "SAVING_THROW")
	assert.Equal(t, "dexterity", value)
}

func TestLevelKeyValues(t *testing.T) {
	e := NewFuzzyExtractor(testPatterns())

	value, _ := predictionFor(t, e, "what 3rd level spells are there", "LEVEL")
	assert.Equal(t, "3", value)

	value, _ = predictionFor(t, e, "is that a cantrip", "LEVEL")
	assert.Equal(t, "0", value)
}

func TestOnePredictionPerLabel(t *testing.T) {
	e := NewFuzzyExtractor(testPatterns())
	predictions := e.Predict("fireball or magic missile")
	seen := map[string]int{}
	for _, p := range predictions {
		seen[p.Label]++
	}
	for label, n := range seen {
		require.Equal(t, 1, n, "label %s", label)
	}
}
