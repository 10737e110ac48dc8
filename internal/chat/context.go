// Package chat holds the per-session conversation state: the latest
// resolved entity per label and the ordered turn history.
package chat

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grimoire/internal/domain"
)

// Context is the session-scoped conversation state. It is owned by a
// single session's turn handler and never shared between goroutines.
type Context struct {
	sessionID string
	entities  map[string]domain.Prediction
	history   []domain.Message
	log       *zap.Logger
}

// NewContext creates an empty conversation context for a new session.
func NewContext(log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		sessionID: uuid.NewString(),
		entities:  make(map[string]domain.Prediction),
		log:       log,
	}
}

// SessionID returns the session identifier.
func (c *Context) SessionID() string { return c.sessionID }

// Update stores the prediction as the latest value for its label,
// overwriting any previous value.
func (c *Context) Update(p domain.Prediction) {
	c.entities[p.Label] = p
}

// Get returns the latest prediction for a label, if any.
func (c *Context) Get(label string) (domain.Prediction, bool) {
	p, ok := c.entities[label]
	return p, ok
}

// Clear drops all entity state. The turn history is kept.
func (c *Context) Clear() {
	c.entities = make(map[string]domain.Prediction)
}

// AppendTurn records one user/bot exchange in order.
func (c *Context) AppendTurn(userText, botText string) {
	c.history = append(c.history,
		domain.Message{Text: userText, Role: domain.RoleUser},
		domain.Message{Text: botText, Role: domain.RoleBot},
	)
}

// History returns the ordered turn history.
func (c *Context) History() []domain.Message { return c.history }

// FetchByKey looks up a record in a spells JSON file by case-insensitive
// exact match on the given key. A missing or malformed file is logged and
// yields an empty record; it never aborts the turn.
func (c *Context) FetchByKey(path, key, value string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		c.log.Warn("record file not readable", zap.String("path", path), zap.Error(err))
		return map[string]any{}
	}
	var doc struct {
		Spells []map[string]any `json:"spells"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		c.log.Warn("record file not valid JSON", zap.String("path", path), zap.Error(err))
		return map[string]any{}
	}
	for _, item := range doc.Spells {
		if v, ok := item[key].(string); ok && strings.EqualFold(v, value) {
			return item
		}
	}
	return map[string]any{}
}
