package domain

// AgentStatus tracks the lifecycle of a registered agent or one of its tasks.
type AgentStatus string

const (
	AgentStatusIdle       AgentStatus = "idle"
	AgentStatusProcessing AgentStatus = "processing"
	AgentStatusCompleted  AgentStatus = "completed"
	AgentStatusFailed     AgentStatus = "failed"
)

// AgentCapability names a task type an agent can run.
type AgentCapability string

const (
	CapabilityDataAnalysis     AgentCapability = "data-analysis"
	CapabilityForecasting      AgentCapability = "forecasting"
	CapabilityAnomalyDetection AgentCapability = "anomaly-detection"
	CapabilityRecommendation   AgentCapability = "recommendation"
)

// TrackedAgent is an entry in the agent registry exposed over HTTP. It is a
// bookkeeping record, not a pipeline stage.
type TrackedAgent struct {
	ID           string
	Name         string
	Description  string
	Capabilities []AgentCapability
	Status       AgentStatus
	CreatedAt    Timestamp
	UpdatedAt    Timestamp
}

func (a *TrackedAgent) Supports(c AgentCapability) bool {
	for _, cap := range a.Capabilities {
		if cap == c {
			return true
		}
	}
	return false
}

// AgentTask is a unit of asynchronous work dispatched to a tracked agent.
type AgentTask struct {
	ID          string
	AgentID     string
	Type        AgentCapability
	Input       map[string]any
	Output      map[string]any
	Status      AgentStatus
	Error       string
	StartedAt   Timestamp
	CompletedAt *Timestamp
}
