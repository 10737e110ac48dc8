package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeFile(t, "spells.json", `{
		"spells": [
			{"name": "Fireball", "level": 3, "school": "evocation",
			 "description": "Each creature takes 8d6 fire damage.",
			 "components": ["V", "S", "M"], "material": "a tiny ball of bat guano"}
		]
	}`)
	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Spells, 1)
	assert.Equal(t, "Fireball", c.Spells[0].Name)
	assert.Equal(t, []string{"V", "S", "M"}, c.Spells[0].Components)
}

func TestDeriveDamageTypes(t *testing.T) {
	c := &Catalog{Spells: []Spell{
		{Name: "Fireball", Description: "Each creature takes 8d6 fire damage. A target with resistance to cold ignores this."},
		{Name: "Shield", Description: "An invisible barrier protects you."},
	}}
	entities := &EntityData{Entities: []EntityPatterns{
		{Label: "DAMAGE_TYPE", Patterns: []string{"fire", "cold"}},
	}}

	DeriveDamageTypes(c, entities)

	assert.Equal(t, []string{"fire"}, c.Spells[0].DamageTypes, "resistance sentence must not contribute cold")
	assert.Empty(t, c.Spells[1].DamageTypes)
}

func TestExtendEntityPatterns(t *testing.T) {
	c := &Catalog{Spells: []Spell{{Name: "Magic Missile"}, {Name: "Fireball"}}}
	entities := &EntityData{Entities: []EntityPatterns{
		{Label: "SAVING_THROW", Patterns: []string{"dexterity", "wisdom"}},
	}}

	ExtendEntityPatterns(entities, c)

	byLabel := map[string][]string{}
	for _, ent := range entities.Entities {
		byLabel[ent.Label] = ent.Patterns
	}
	assert.Equal(t, []string{"Magic Missile", "Fireball"}, byLabel["SPELL"])
	assert.Contains(t, byLabel["LEVEL"], "3rd level")
	assert.Contains(t, byLabel["LEVEL"], "level 3")
	assert.Contains(t, byLabel["LEVEL"], "cantrip")
	assert.Equal(t, []string{"dexterity saving throw", "wisdom saving throw"}, byLabel["SAVING_THROW"])
}

func TestRawEntriesConcatenatesTextFields(t *testing.T) {
	c := &Catalog{Spells: []Spell{{
		Name:        "Fireball",
		Description: "A bright streak flashes.",
		HigherLevel: "The damage increases by 1d6.",
	}}}
	entries := c.RawEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Fireball", entries[0].Name)
	assert.Equal(t, "A bright streak flashes. The damage increases by 1d6.", entries[0].Text)
}
