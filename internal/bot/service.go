// Package bot runs the confidence-gated turn flow: coreference resolution,
// intent classification, entity extraction, and finally either a canned
// clarifying response, template substitution, or semantic retrieval.
package bot

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"grimoire/internal/chat"
	"grimoire/internal/coref"
	"grimoire/internal/domain"
)

// Canned responses for the gate tiers and for degraded turns.
const (
	RephraseResponse    = "I'm not sure what you mean. Could you please rephrase?"
	NotFoundResponse    = "I'm sorry, I can't find that spell in my grimoire. Could you try again?"
	DidYouMeanResponse  = "I couldn't find that spell in my grimoire. Did you mean %s?"
	CantProcessResponse = "I can't process that right now. Could you try again?"
)

const (
	labelSpell = "SPELL"
	labelLevel = "LEVEL"

	// Pronouns resolved from context are trusted more than fresh fuzzy
	// matches but less than an exact one, so a later exact mention can
	// still override them.
	corefConfidence = 95

	intentThreshold      = 0.8
	commitThreshold      = 80
	levelCommitThreshold = 90

	gateAcceptScore  = 90
	gateClarifyScore = 80
)

// Searcher answers a free-text query scoped to one entry.
type Searcher interface {
	Search(query, entryName string, recScore, minScore float64, maxResults int) (string, error)
}

// SearchParams carries the retrieval acceptance thresholds into each turn.
type SearchParams struct {
	RecommendedScore float64
	MinScore         float64
	MaxResults       int
}

// Config holds the per-session wiring that is data rather than behavior.
type Config struct {
	SpellsPath     string
	ExceptionsPath string
	Search         SearchParams
}

// Bot is one session's turn handler. It owns the conversation context and
// must not be shared between goroutines.
type Bot struct {
	context   *chat.Context
	resolver  *coref.Resolver
	intents   domain.IntentClassifier
	extractor domain.EntityExtractor
	searcher  Searcher
	cfg       Config
	log       *zap.Logger
}

// New creates a turn handler over a fresh conversation context.
func New(intents domain.IntentClassifier, extractor domain.EntityExtractor, searcher Searcher, cfg Config, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	context := chat.NewContext(log)
	return &Bot{
		context:   context,
		resolver:  coref.NewResolver(context),
		intents:   intents,
		extractor: extractor,
		searcher:  searcher,
		cfg:       cfg,
		log:       log,
	}
}

// Context exposes the session's conversation context.
func (b *Bot) Context() *chat.Context { return b.context }

// Respond runs one turn and records it in the history. The returned error
// is reserved for authoring mistakes (an unknown template placeholder);
// external failures degrade to a canned response instead.
func (b *Bot) Respond(message string) (string, error) {
	response, err := b.respond(message)
	if err != nil {
		return "", err
	}
	b.context.AppendTurn(message, response)
	return response, nil
}

func (b *Bot) respond(message string) (string, error) {
	resolved := b.resolver.Resolve(message)
	for label, value := range resolved {
		b.context.Update(domain.Prediction{Label: label, Value: value, Confidence: corefConfidence})
	}

	intentTag, template := b.classify(message)

	// Resolved pronouns carry the previous turn's entities forward; only a
	// pronoun-free message starts entity state over from the extractor.
	if len(resolved) == 0 {
		b.context.Clear()
		for _, p := range b.extractor.Predict(message) {
			threshold := float64(commitThreshold)
			if p.Label == labelLevel {
				threshold = levelCommitThreshold
			}
			if p.Confidence >= threshold {
				b.context.Update(p)
			}
		}
	}

	spell, ok := b.context.Get(labelSpell)
	switch {
	case !ok || spell.Confidence < gateClarifyScore:
		if intentTag == "" {
			return RephraseResponse, nil
		}
		return NotFoundResponse, nil
	case spell.Confidence < gateAcceptScore:
		return fmt.Sprintf(DidYouMeanResponse, spell.Value), nil
	}

	if intentTag == "" {
		answer, err := b.searcher.Search(message, spell.Value,
			b.cfg.Search.RecommendedScore, b.cfg.Search.MinScore, b.cfg.Search.MaxResults)
		if err != nil {
			b.log.Error("retrieval failed", zap.String("entry", spell.Value), zap.Error(err))
			return CantProcessResponse, nil
		}
		return answer, nil
	}

	record := b.context.FetchByKey(b.cfg.SpellsPath, "name", spell.Value)
	return Substitute(template, record)
}

// classify returns the matched intent tag and its response template, or
// empty strings when no intent clears the threshold. Sub-threshold turns
// are appended to the exceptions file for later training review.
func (b *Bot) classify(message string) (string, string) {
	tag, confidence := b.intents.Predict(message)
	if tag == "" || confidence < intentThreshold {
		b.writeException(message, tag, confidence)
		return "", ""
	}
	template, ok := b.intents.Response(tag)
	if !ok {
		return "", ""
	}
	return tag, template
}

func (b *Bot) writeException(message, tag string, confidence float64) {
	if b.cfg.ExceptionsPath == "" {
		return
	}
	f, err := os.OpenFile(b.cfg.ExceptionsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		b.log.Warn("exceptions file not writable", zap.String("path", b.cfg.ExceptionsPath), zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "Message: %s, Predicted Tag: %s, Confidence: %.3f\n", message, tag, confidence); err != nil {
		b.log.Warn("writing exceptions file", zap.Error(err))
	}
}
