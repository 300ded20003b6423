package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAgentNotFound   = errors.New("agent not found")
	ErrTaskNotFound    = errors.New("task not found")
)

// ChatSession is one ongoing conversation between a user and the pipeline.
type ChatSession struct {
	ID        SessionID
	UserID    UserID
	Context   string // opaque JSON blob describing session state
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// ChatMessage is a persisted conversation turn. Metadata carries the
// stage-specific payload (interpretation, sources, confidence...) as JSON.
type ChatMessage struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Content   string
	Metadata  string
	CreatedAt Timestamp
}
