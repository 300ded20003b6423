// Package agents is the registry and task tracker for background analysis
// agents. These are bookkeeping records and asynchronous jobs, separate from
// the chat pipeline stages.
package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

var validCapabilities = map[domain.AgentCapability]bool{
	domain.CapabilityDataAnalysis:     true,
	domain.CapabilityForecasting:      true,
	domain.CapabilityAnomalyDetection: true,
	domain.CapabilityRecommendation:   true,
}

// Service implements agent CRUD and asynchronous task execution.
type Service struct {
	agents domain.AgentStore
	tasks  domain.TaskStore
	llm    domain.LLMClient
}

func NewService(agents domain.AgentStore, tasks domain.TaskStore, llm domain.LLMClient) *Service {
	return &Service{agents: agents, tasks: tasks, llm: llm}
}

// CreateAgentRequest is the registration payload.
type CreateAgentRequest struct {
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	Capabilities []domain.AgentCapability `json:"capabilities"`
}

func (s *Service) CreateAgent(ctx context.Context, req CreateAgentRequest) (*domain.TrackedAgent, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if len(req.Capabilities) == 0 {
		return nil, fmt.Errorf("at least one capability is required")
	}
	for _, c := range req.Capabilities {
		if !validCapabilities[c] {
			return nil, fmt.Errorf("unknown capability %q", c)
		}
	}

	agent := &domain.TrackedAgent{
		Name:         req.Name,
		Description:  req.Description,
		Capabilities: req.Capabilities,
		Status:       domain.AgentStatusIdle,
	}
	if err := s.agents.CreateAgent(agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *Service) GetAgent(ctx context.Context, id string) (*domain.TrackedAgent, error) {
	return s.agents.GetAgent(id)
}

func (s *Service) ListAgents(ctx context.Context) ([]*domain.TrackedAgent, error) {
	return s.agents.ListAgents()
}

// UpdateAgentRequest patches mutable agent fields. Nil fields are untouched.
type UpdateAgentRequest struct {
	Name         *string                  `json:"name,omitempty"`
	Description  *string                  `json:"description,omitempty"`
	Capabilities []domain.AgentCapability `json:"capabilities,omitempty"`
}

func (s *Service) UpdateAgent(ctx context.Context, id string, req UpdateAgentRequest) (*domain.TrackedAgent, error) {
	agent, err := s.agents.GetAgent(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.Description != nil {
		agent.Description = *req.Description
	}
	if len(req.Capabilities) > 0 {
		for _, c := range req.Capabilities {
			if !validCapabilities[c] {
				return nil, fmt.Errorf("unknown capability %q", c)
			}
		}
		agent.Capabilities = req.Capabilities
	}

	if err := s.agents.UpdateAgent(agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *Service) DeleteAgent(ctx context.Context, id string) error {
	return s.agents.DeleteAgent(id)
}

// DispatchTaskRequest asks an agent to run one unit of work.
type DispatchTaskRequest struct {
	Type  domain.AgentCapability `json:"type"`
	Input map[string]any         `json:"input"`
}

// DispatchTask validates the request, records the task as processing, and runs
// it in the background. The handler returns immediately with the task id.
func (s *Service) DispatchTask(ctx context.Context, agentID string, req DispatchTaskRequest) (*domain.AgentTask, error) {
	agent, err := s.agents.GetAgent(agentID)
	if err != nil {
		return nil, err
	}
	if !agent.Supports(req.Type) {
		return nil, fmt.Errorf("agent %q does not support %q", agent.Name, req.Type)
	}

	task := &domain.AgentTask{
		AgentID: agent.ID,
		Type:    req.Type,
		Input:   req.Input,
		Status:  domain.AgentStatusProcessing,
	}
	if err := s.tasks.CreateTask(task); err != nil {
		return nil, err
	}

	agent.Status = domain.AgentStatusProcessing
	if err := s.agents.UpdateAgent(agent); err != nil {
		return nil, err
	}

	// Detach from the request context but keep the request id for tracing.
	bg := observability.WithRequestID(context.Background(), observability.RequestID(ctx))
	go s.processTask(bg, agent.ID, task.ID)

	return task, nil
}

func (s *Service) GetTask(ctx context.Context, id string) (*domain.AgentTask, error) {
	return s.tasks.GetTask(id)
}

func (s *Service) ListTasks(ctx context.Context, agentID string) ([]*domain.AgentTask, error) {
	return s.tasks.ListTasks(agentID)
}

// processTask runs the model call off the request goroutine and records the
// outcome on both the task and the agent.
func (s *Service) processTask(ctx context.Context, agentID, taskID string) {
	log := observability.LoggerFromContext(ctx).With().
		Str("agent_id", agentID).
		Str("task_id", taskID).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	task, err := s.tasks.GetTask(taskID)
	if err != nil {
		log.Error().Err(err).Msg("agents: task vanished before processing")
		return
	}

	insights, err := s.llm.GenerateInsights(ctx, map[string]any{
		"taskType": string(task.Type),
		"input":    task.Input,
	})

	now := time.Now()
	task.CompletedAt = &now
	if err != nil {
		task.Status = domain.AgentStatusFailed
		task.Error = err.Error()
		log.Error().Err(err).Msg("agents: task failed")
	} else {
		task.Status = domain.AgentStatusCompleted
		task.Output = map[string]any{"insights": insights}
		log.Info().Msg("agents: task completed")
	}

	if err := s.tasks.UpdateTask(task); err != nil {
		log.Error().Err(err).Msg("agents: failed to record task outcome")
	}

	agent, err := s.agents.GetAgent(agentID)
	if err != nil {
		return
	}
	agent.Status = domain.AgentStatusIdle
	if err := s.agents.UpdateAgent(agent); err != nil {
		log.Error().Err(err).Msg("agents: failed to reset agent status")
	}
}
