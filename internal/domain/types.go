package domain

import "time"

type SessionID string
type UserID string
type MessageID string

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type Timestamp = time.Time

// AgentMessage is one entry in the conversation trail threaded through the
// pipeline. Order is significant: cause before effect. The trail is the only
// audit log of what each stage did.
type AgentMessage struct {
	Role     Role           `json:"role"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Interpretation is the structured reading of a user query produced by the
// interpreter stage. Intent is always in Portuguese, whatever language the
// question was asked in.
type Interpretation struct {
	Intent                string         `json:"intent"`
	Entities              map[string]any `json:"entities"`
	RequiresData          bool           `json:"requiresData"`
	RequiresExternalTools bool           `json:"requiresExternalTools,omitempty"`
	SuggestedQueries      []string       `json:"suggestedQueries"`
	Confidence            float64        `json:"confidence"`
}

// Clamp forces confidence into [0,1].
func (i *Interpretation) Clamp() {
	if i.Confidence < 0 {
		i.Confidence = 0
	}
	if i.Confidence > 1 {
		i.Confidence = 1
	}
}
