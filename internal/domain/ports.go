package domain

import "context"

// LLMClient defines how the pipeline talks to a generative model provider.
type LLMClient interface {
	// GenerateText runs a plain chat completion over an ordered message list.
	// Implementations must tolerate being called with no system message.
	GenerateText(ctx context.Context, messages []AgentMessage) (string, error)

	// GenerateInsights asks the model for a list of textual insights about an
	// arbitrary payload. Callers take insights[0] as "the" answer.
	GenerateInsights(ctx context.Context, payload map[string]any) ([]string, error)
}

// ToolClient lists and invokes externally hosted named tools.
type ToolClient interface {
	ListTools(ctx context.Context) ([]ToolDescriptor, error)
	CallTool(ctx context.Context, serverName, toolName string, args map[string]any) (*ToolCallResult, error)
	Health(ctx context.Context) map[string]bool
	Servers() []ToolServerInfo
}

// QueryExecutor runs a read-only query against the relational store and
// returns row-shaped records.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error)
}

// ChatStore persists sessions and conversation turns.
type ChatStore interface {
	CreateSession(ctx context.Context, session *ChatSession) error
	GetSession(ctx context.Context, id SessionID) (*ChatSession, error)
	TouchSession(ctx context.Context, id SessionID) error
	ListSessions(ctx context.Context, userID UserID, limit int) ([]*ChatSession, error)

	AppendMessage(ctx context.Context, msg *ChatMessage) error
	GetMessagesBySession(ctx context.Context, sessionID SessionID, limit int) ([]*ChatMessage, error)
}

// AgentStore persists tracked agents (the CRUD task-tracker surface, not the
// pipeline stages).
type AgentStore interface {
	CreateAgent(agent *TrackedAgent) error
	GetAgent(id string) (*TrackedAgent, error)
	ListAgents() ([]*TrackedAgent, error)
	UpdateAgent(agent *TrackedAgent) error
	DeleteAgent(id string) error
}

// TaskStore persists agent tasks.
type TaskStore interface {
	CreateTask(task *AgentTask) error
	GetTask(id string) (*AgentTask, error)
	ListTasks(agentID string) ([]*AgentTask, error)
	UpdateTask(task *AgentTask) error
}
