// Package coref resolves pronouns in user messages against the
// conversation context. It is a deterministic, priority-ordered heuristic
// over a fixed set of entity types, not a linguistic coreference engine.
package coref

import (
	"regexp"
	"strings"

	"grimoire/internal/domain"
)

// ContextReader is the read-only view of conversation state the resolver
// needs. The resolver never mutates context; callers commit resolved
// values afterward.
type ContextReader interface {
	Get(label string) (domain.Prediction, bool)
}

// TypePatterns lists the qualified pronoun phrases for one entity type.
// Generic pronouns (it, its, that, this) are handled separately and must
// not appear here.
type TypePatterns struct {
	Label    string
	Patterns []*regexp.Regexp
}

// Resolver maps pronouns to previously mentioned entity values. The
// pattern table and priority list are data; resolution iterates them
// rather than hardcoding per-type control flow.
type Resolver struct {
	context  ContextReader
	primary  string
	table    []TypePatterns
	priority []string
	generics []*regexp.Regexp
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`\b`+p+`\b`))
	}
	return out
}

// NewResolver creates a resolver with the default pattern table: SPELL is
// the primary type, followed by DAMAGE_TYPE, SCHOOL, CLASS, and LEVEL in
// generic-pronoun priority order.
func NewResolver(context ContextReader) *Resolver {
	return &Resolver{
		context: context,
		primary: "SPELL",
		table: []TypePatterns{
			{Label: "SPELL", Patterns: compileAll(`the spell`, `that spell`, `this spell`, `the one`, `that one`)},
			{Label: "SCHOOL", Patterns: compileAll(`that school`, `this school`, `the school`)},
			{Label: "DAMAGE_TYPE", Patterns: compileAll(`that damage type`, `this damage type`, `the damage type`, `that type`, `this type`)},
			{Label: "CLASS", Patterns: compileAll(`that class`, `this class`, `the class`)},
			{Label: "LEVEL", Patterns: compileAll(`that level`, `this level`, `the level`)},
		},
		priority: []string{"SPELL", "DAMAGE_TYPE", "SCHOOL", "CLASS", "LEVEL"},
		generics: compileAll(`it`, `its`, `that`, `this`),
	}
}

// Resolve maps entity types to values for every pronoun in the message
// that the current context can answer. Empty when nothing matches or no
// prioritized type holds context.
func (r *Resolver) Resolve(message string) map[string]string {
	lower := strings.ToLower(message)
	resolved := make(map[string]string)

	// Qualified phrases first, most specific wins. A matched phrase claims
	// its pronoun tokens so the generic scan below does not see them.
	remaining := lower
	for _, tp := range r.table {
		for _, pattern := range tp.Patterns {
			if !pattern.MatchString(lower) {
				continue
			}
			remaining = pattern.ReplaceAllString(remaining, " ")
			if _, done := resolved[tp.Label]; done {
				continue
			}
			if p, ok := r.context.Get(tp.Label); ok && p.Value != "" {
				resolved[tp.Label] = p.Value
			}
		}
	}

	// Bare generic pronoun: resolve the first type in priority order that
	// currently has context. Only one type per match.
	for _, generic := range r.generics {
		if !generic.MatchString(remaining) {
			continue
		}
		for _, label := range r.priority {
			if _, done := resolved[label]; done {
				continue
			}
			if p, ok := r.context.Get(label); ok && p.Value != "" {
				resolved[label] = p.Value
				break
			}
		}
		break
	}

	return resolved
}
