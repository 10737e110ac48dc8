// Package catalog loads the spell catalog and entity pattern data and
// derives the fields the extractor and responder need: per-spell damage
// types mined from descriptions, and entity patterns extended with spell
// names, level phrases, and saving-throw forms.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"grimoire/internal/domain"
)

// Spell is one processed catalog record.
type Spell struct {
	Name           string   `json:"name"`
	Level          int      `json:"level"`
	School         string   `json:"school"`
	Classes        []string `json:"classes,omitempty"`
	CastingTime    string   `json:"castingTime,omitempty"`
	ActionType     string   `json:"actionType,omitempty"`
	Range          string   `json:"range,omitempty"`
	Components     []string `json:"components,omitempty"`
	Material       string   `json:"material,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Description    string   `json:"description"`
	HigherLevel    string   `json:"higherLevelSlot,omitempty"`
	CantripUpgrade string   `json:"cantripUpgrade,omitempty"`
	DamageTypes    []string `json:"damageTypes,omitempty"`
}

// Catalog holds all spells.
type Catalog struct {
	Spells []Spell `json:"spells"`
}

// EntityPatterns is the pattern list for one entity label.
type EntityPatterns struct {
	Label    string   `json:"label"`
	Patterns []string `json:"patterns"`
}

// EntityData holds all entity pattern lists.
type EntityData struct {
	Entities []EntityPatterns `json:"entities"`
}

// LoadCatalog reads a spells JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &c, nil
}

// Save writes the processed catalog to disk.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEntityData reads an entity pattern JSON file.
func LoadEntityData(path string) (*EntityData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entity data: %w", err)
	}
	var e EntityData
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parsing entity data: %w", err)
	}
	return &e, nil
}

var (
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	wordRe     = regexp.MustCompile(`[A-Za-z']+`)
)

// DeriveDamageTypes scans each spell description for sentences mentioning a
// known damage type and records the matches on the spell. Sentences about
// resistances, immunities, or vulnerabilities are skipped so "resistance to
// fire damage" does not tag a spell as dealing fire damage.
func DeriveDamageTypes(c *Catalog, entities *EntityData) {
	var damageTypes []string
	for _, ent := range entities.Entities {
		if ent.Label == "DAMAGE_TYPE" {
			damageTypes = append(damageTypes, ent.Patterns...)
		}
	}
	if len(damageTypes) == 0 {
		return
	}

	for i := range c.Spells {
		spell := &c.Spells[i]
		sentences := sentenceRe.FindAllString(spell.Description, -1)
		if len(sentences) == 0 && spell.Description != "" {
			sentences = []string{spell.Description}
		}
		seen := map[string]bool{}
		for _, dt := range spell.DamageTypes {
			seen[dt] = true
		}
		for _, sentence := range sentences {
			words := map[string]bool{}
			for _, w := range wordRe.FindAllString(strings.ToLower(sentence), -1) {
				words[w] = true
			}
			if words["resistance"] || words["immunity"] || words["vulnerability"] {
				continue
			}
			for _, dt := range damageTypes {
				if words[strings.ToLower(dt)] && !seen[dt] {
					seen[dt] = true
					spell.DamageTypes = append(spell.DamageTypes, dt)
				}
			}
		}
	}
}

// ExtendEntityPatterns grows the entity data with patterns derived from the
// catalog: every spell name under SPELL, level phrases (ordinals, "level N",
// cantrips) under LEVEL, and "<ability> saving throw" forms for
// SAVING_THROW.
func ExtendEntityPatterns(entities *EntityData, c *Catalog) {
	// Names keep their catalog casing: the extractor lowercases patterns
	// when matching, and the matched value doubles as the store entry key.
	spellEntity := EntityPatterns{Label: "SPELL"}
	for _, spell := range c.Spells {
		spellEntity.Patterns = append(spellEntity.Patterns, spell.Name)
	}
	entities.Entities = append(entities.Entities, spellEntity)

	levelPatterns := []string{"cantrip", "cantrips"}
	for level := 1; level <= 9; level++ {
		levelPatterns = append(levelPatterns,
			fmt.Sprintf("%s level", ordinal(level)),
			fmt.Sprintf("level %d", level),
		)
	}
	entities.Entities = append(entities.Entities, EntityPatterns{Label: "LEVEL", Patterns: levelPatterns})

	for i := range entities.Entities {
		ent := &entities.Entities[i]
		if ent.Label != "SAVING_THROW" {
			continue
		}
		patterns := make([]string, 0, len(ent.Patterns))
		for _, p := range ent.Patterns {
			patterns = append(patterns, p+" saving throw")
		}
		ent.Patterns = patterns
	}
}

// RawEntries converts the catalog into chunker input. Entry text is the
// description followed by the higher-level and cantrip-upgrade fields, in
// the order they were embedded originally.
func (c *Catalog) RawEntries() []domain.RawEntry {
	entries := make([]domain.RawEntry, 0, len(c.Spells))
	for _, spell := range c.Spells {
		parts := []string{spell.Description}
		if spell.HigherLevel != "" {
			parts = append(parts, spell.HigherLevel)
		}
		if spell.CantripUpgrade != "" {
			parts = append(parts, spell.CantripUpgrade)
		}
		entries = append(entries, domain.RawEntry{
			Name: spell.Name,
			Text: strings.Join(parts, " "),
		})
	}
	return entries
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
