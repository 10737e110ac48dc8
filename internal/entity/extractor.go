// Package entity extracts labelled entity values from user messages.
// The statistical NER model is an external collaborator behind the
// domain.EntityExtractor interface; the fuzzy extractor here matches
// catalog-derived patterns so the chatbot can run without one.
package entity

import (
	"strings"

	"github.com/agext/levenshtein"

	"grimoire/internal/catalog"
	"grimoire/internal/domain"
)

// FuzzyExtractor finds, for each entity label, the best fuzzy partial
// match among that label's patterns. Confidence is the match ratio scaled
// to 0..100; one prediction per label is always reported and callers apply
// their own thresholds. Works for small pattern sets with predictable
// phrasing, which is all a catalog of named entries needs.
type FuzzyExtractor struct {
	entities []catalog.EntityPatterns
	params   *levenshtein.Params
}

// NewFuzzyExtractor creates an extractor over the given pattern lists.
func NewFuzzyExtractor(entities []catalog.EntityPatterns) *FuzzyExtractor {
	return &FuzzyExtractor{entities: entities, params: levenshtein.NewParams()}
}

// Predict returns one prediction per entity label, ordered as the labels
// appear in the pattern data.
func (e *FuzzyExtractor) Predict(text string) []domain.Prediction {
	lower := strings.ToLower(text)
	predictions := make([]domain.Prediction, 0, len(e.entities))
	for _, ent := range e.entities {
		bestScore := 0.0
		bestValue := ""
		for _, pattern := range ent.Patterns {
			score := e.partialRatio(strings.ToLower(pattern), lower)
			if score > bestScore {
				bestScore = score
				bestValue = pattern
			}
			if bestScore == 1 {
				break
			}
		}
		if bestValue == "" {
			continue
		}
		predictions = append(predictions, domain.Prediction{
			Label:      ent.Label,
			Value:      extractKeyValue(bestValue, ent.Label),
			Confidence: bestScore * 100,
		})
	}
	return predictions
}

// partialRatio is the best similarity between the pattern and any
// pattern-length window of the text, so short patterns still score high
// inside long messages.
func (e *FuzzyExtractor) partialRatio(pattern, text string) float64 {
	if pattern == "" || text == "" {
		return 0
	}
	if len(text) <= len(pattern) {
		return levenshtein.Similarity(pattern, text, e.params)
	}
	best := 0.0
	for i := 0; i+len(pattern) <= len(text); i++ {
		score := levenshtein.Similarity(pattern, text[i:i+len(pattern)], e.params)
		if score > best {
			best = score
		}
		if best == 1 {
			break
		}
	}
	return best
}

// extractKeyValue reduces a matched pattern to the value committed to
// context: the ability word for saving throws, the digit for level
// phrases, "0" for cantrips.
func extractKeyValue(value, label string) string {
	switch label {
	case "SAVING_THROW":
		if fields := strings.Fields(value); len(fields) > 0 {
			return fields[0]
		}
	case "LEVEL":
		lower := strings.ToLower(value)
		if lower == "cantrip" || lower == "cantrips" {
			return "0"
		}
		for _, word := range strings.Fields(lower) {
			switch word {
			case "1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th":
				return word[:1]
			case "1", "2", "3", "4", "5", "6", "7", "8", "9":
				return word
			}
		}
	}
	return value
}
