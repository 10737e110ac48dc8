package coref

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grimoire/internal/domain"
)

type fakeContext map[string]string

func (f fakeContext) Get(label string) (domain.Prediction, bool) {
	v, ok := f[label]
	return domain.Prediction{Label: label, Value: v, Confidence: 95}, ok
}

func TestGenericPronounResolvesPrimaryFirst(t *testing.T) {
	r := NewResolver(fakeContext{"SPELL": "fireball"})
	assert.Equal(t, map[string]string{"SPELL": "fireball"}, r.Resolve("what does it do"))
}

func TestGenericPronounFallsThroughPriority(t *testing.T) {
	r := NewResolver(fakeContext{"SCHOOL": "evocation", "CLASS": "wizard"})
	// No SPELL or DAMAGE_TYPE in context: SCHOOL wins over CLASS.
	assert.Equal(t, map[string]string{"SCHOOL": "evocation"}, r.Resolve("tell me about that"))
}

func TestQualifiedPhraseResolvesItsType(t *testing.T) {
	r := NewResolver(fakeContext{"SPELL": "fireball", "SCHOOL": "evocation"})
	resolved := r.Resolve("what other spells are in that school")
	assert.Equal(t, "evocation", resolved["SCHOOL"])
}

func TestSpellSpecificPhrase(t *testing.T) {
	r := NewResolver(fakeContext{"SPELL": "magic missile"})
	assert.Equal(t, map[string]string{"SPELL": "magic missile"}, r.Resolve("how much damage does the spell do"))
}

func TestQualifiedPhraseClaimsItsPronoun(t *testing.T) {
	r := NewResolver(fakeContext{"SPELL": "fireball", "SCHOOL": "evocation"})
	// "that" belongs to "that school"; it must not also resolve SPELL.
	resolved := r.Resolve("is that school any good")
	assert.Equal(t, map[string]string{"SCHOOL": "evocation"}, resolved)
}

func TestEmptyContextResolvesNothing(t *testing.T) {
	r := NewResolver(fakeContext{})
	assert.Empty(t, r.Resolve("what does it do"))
}

func TestNoPronounResolvesNothing(t *testing.T) {
	r := NewResolver(fakeContext{"SPELL": "fireball"})
	assert.Empty(t, r.Resolve("tell me about magic missile"))
}

func TestResolverDoesNotMutateContext(t *testing.T) {
	ctx := fakeContext{"SPELL": "fireball"}
	r := NewResolver(ctx)
	_ = r.Resolve("what does it do")
	assert.Equal(t, fakeContext{"SPELL": "fireball"}, ctx)
}
