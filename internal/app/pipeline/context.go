package pipeline

import "github.com/PabloGalante/olist-intelligence/internal/domain"

// Context is the state threaded through one pipeline run. It is treated as an
// immutable value: every stage returns a new Context, so a failing stage never
// leaves partial mutations behind.
type Context struct {
	SessionID string
	UserQuery string
	History   []domain.AgentMessage

	// Each optional field has exactly one producer stage. Later stages read,
	// never overwrite.
	Interpretation *domain.Interpretation
	QueryResults   []map[string]any
	ToolResults    *domain.ToolInvocation
	RawResponse    string
	Suggestions    []string
}

// NewContext seeds a fresh context for one inbound chat turn.
func NewContext(sessionID, userQuery string, history []domain.AgentMessage) Context {
	return Context{
		SessionID: sessionID,
		UserQuery: userQuery,
		History:   history,
	}
}

// WithMessage returns a copy with one message appended to the trail. The
// backing slice is copied so the receiver stays untouched.
func (c Context) WithMessage(msg domain.AgentMessage) Context {
	history := make([]domain.AgentMessage, len(c.History), len(c.History)+1)
	copy(history, c.History)
	c.History = append(history, msg)
	return c
}

// LastMessage returns the most recent trail entry, or nil when empty.
func (c Context) LastMessage() *domain.AgentMessage {
	if len(c.History) == 0 {
		return nil
	}
	return &c.History[len(c.History)-1]
}
