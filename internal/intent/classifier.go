// Package intent classifies user messages against the intents data file.
// The statistical model is an external collaborator behind the
// domain.IntentClassifier interface; the rule classifier here scores token
// overlap so the chatbot can run without a trained model.
package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"regexp"
	"strings"
)

// Intent is one tag with its training patterns and response templates.
type Intent struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

type intentsFile struct {
	Intents []Intent `json:"intents"`
}

var tokenRe = regexp.MustCompile(`[\p{L}\d]+(?:['’][\p{L}\d]+)*`)

// RuleClassifier scores a message against every intent pattern with the
// Ochiai token-overlap coefficient and reports the best tag.
type RuleClassifier struct {
	intents   []Intent
	responses map[string][]string
}

// Load reads an intents JSON file.
func Load(path string) (*RuleClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading intents: %w", err)
	}
	var f intentsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing intents: %w", err)
	}
	return New(f.Intents), nil
}

// New creates a classifier over the given intents.
func New(intents []Intent) *RuleClassifier {
	responses := make(map[string][]string, len(intents))
	for _, in := range intents {
		responses[in.Tag] = in.Responses
	}
	return &RuleClassifier{intents: intents, responses: responses}
}

// Predict returns the best-matching tag and a confidence in [0,1]. An
// empty label means no pattern shared any token with the message.
func (c *RuleClassifier) Predict(text string) (string, float64) {
	msgTokens := tokenSet(text)
	if len(msgTokens) == 0 {
		return "", 0
	}
	bestTag := ""
	bestScore := 0.0
	for _, in := range c.intents {
		for _, pattern := range in.Patterns {
			score := ochiai(msgTokens, tokenSet(pattern))
			if score > bestScore {
				bestScore = score
				bestTag = in.Tag
			}
		}
	}
	return bestTag, bestScore
}

// Response picks one of the tag's response templates.
func (c *RuleClassifier) Response(label string) (string, bool) {
	responses := c.responses[label]
	if len(responses) == 0 {
		return "", false
	}
	return responses[rand.Intn(len(responses))], true
}

func tokenSet(s string) map[string]struct{} {
	tokens := tokenRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// ochiai is |A∩B| / sqrt(|A||B|).
func ochiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / (math.Sqrt(float64(len(a))) * math.Sqrt(float64(len(b))))
}
