// Package search turns raw nearest-neighbour hits into an ordered,
// deduplicated natural-language answer scoped to one entry.
package search

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"grimoire/internal/domain"
	"grimoire/internal/vectorstore"
)

// NoResultsResponse is returned when nothing clears the minimum score.
const NoResultsResponse = "No relevant information found."

// oversample is how many raw neighbours to fetch before boosting and
// filtering; the acceptance thresholds do the real selection.
const oversample = 25

var (
	dieRollRe    = regexp.MustCompile(`\b\d+d\d+\b`)
	digitRe      = regexp.MustCompile(`\b\d+\b`)
	levelAboveRe = regexp.MustCompile(`level above\s*$`)
	wordDamageRe = regexp.MustCompile(`^\s+\w+\s+damage\b`)
	wordNumberRe = regexp.MustCompile(`\b(one|two|three|four|five|six|seven|eight|nine|ten)\b`)
	wordLevelRe  = regexp.MustCompile(`\b(level|levels)\s+(one|two|three|four|five|six|seven|eight|nine|ten)\b`)
)

// Reranker embeds the query, oversamples nearest neighbours for the entry,
// applies keyword boosts, and assembles the final answer in reading order.
type Reranker struct {
	embedder domain.Embedder
	store    domain.VectorStore
	log      *zap.Logger
}

// NewReranker creates a reranker over the given embedder and store.
func NewReranker(embedder domain.Embedder, store domain.VectorStore, log *zap.Logger) *Reranker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reranker{embedder: embedder, store: store, log: log}
}

// Search answers the query from the named entry's indexed text.
// Candidates scoring at least recScore are primary; those between minScore
// and recScore are the failover set, promoted unchanged when the primary
// set is empty. Retained candidates are deduplicated by context sentence,
// truncated to maxResults, and re-joined in original sentence order so the
// answer reads as prose rather than as a score ranking.
func (r *Reranker) Search(query, entryName string, recScore, minScore float64, maxResults int) (string, error) {
	if entryName == "" {
		return "", vectorstore.ErrNoEntryName
	}

	vec, err := r.embedder.Embed(query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}
	raw, err := r.store.Query(vec, entryName, oversample)
	if err != nil {
		return "", fmt.Errorf("querying store: %w", err)
	}

	var primary, failover []domain.SearchResult
	for _, result := range raw {
		result.Score += keywordBoost(query, result.ContextText)
		switch {
		case result.Score >= recScore:
			primary = append(primary, result)
		case result.Score >= minScore:
			failover = append(failover, result)
		}
	}
	if len(primary) == 0 {
		// Promote the failover set unchanged; a weak answer beats none.
		primary = failover
	}

	sort.SliceStable(primary, func(i, j int) bool { return primary[i].Score > primary[j].Score })

	seen := make(map[string]struct{}, len(primary))
	results := primary[:0]
	for _, result := range primary {
		if _, ok := seen[result.ContextText]; ok {
			continue
		}
		seen[result.ContextText] = struct{}{}
		results = append(results, result)
		if len(results) == maxResults {
			break
		}
	}

	for _, result := range results {
		r.log.Debug("retrieval candidate",
			zap.String("entry", entryName),
			zap.Float64("score", result.Score),
			zap.Int("position", result.Position),
			zap.String("chunk", result.ChunkText),
		)
	}

	if len(results) == 0 {
		return NoResultsResponse, nil
	}

	// Similarity order is not narrative order: restore the original
	// sentence positions before joining.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Position < results[j].Position })
	parts := make([]string, 0, len(results))
	for _, result := range results {
		parts = append(parts, result.ContextText)
	}
	return fmt.Sprintf("According to %s: %s", entryName, strings.Join(parts, " ")), nil
}

// keywordBoost adds +0.2 per matching rule, uncapped. Embedding models
// under-weight the numeric mechanics (die rolls, counts, areas) that
// rules-lookup questions are usually about; these boosts pull chunks
// carrying those details back up the ranking.
func keywordBoost(query, sentence string) float64 {
	q := strings.ToLower(query)
	s := strings.ToLower(sentence)
	boost := 0.0

	if strings.Contains(q, "damage") && dieRollRe.MatchString(sentence) {
		boost += 0.2
	}
	if strings.Contains(q, "how many") || strings.Contains(q, "number") {
		if hasStandaloneNumber(s) || (wordNumberRe.MatchString(s) && !wordLevelRe.MatchString(s)) {
			boost += 0.2
		}
	}
	if (strings.Contains(q, "save") || strings.Contains(q, "saving throw")) && strings.Contains(s, "saving throw") {
		boost += 0.2
	}
	if containsAny(q, "aoe", "area of effect", "radius", "area", "diameter") &&
		containsAny(s, "radius", "area of effect", "sphere", "cylinder", "cone", "cube", "line", "diameter") {
		boost += 0.2
	}
	return boost
}

// hasStandaloneNumber reports whether the sentence contains a bare number
// that is not a "level above N" scaling reference and not an elemental
// damage count like "8 fire damage".
func hasStandaloneNumber(s string) bool {
	for _, loc := range digitRe.FindAllStringIndex(s, -1) {
		if levelAboveRe.MatchString(s[:loc[0]]) {
			continue
		}
		if wordDamageRe.MatchString(s[loc[1]:]) {
			continue
		}
		return true
	}
	return false
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
