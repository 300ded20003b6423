// Package memory holds in-process stores for the agent task tracker. The
// tracker is bookkeeping for in-flight work, so the process lifetime is the
// right durability.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

// AgentStore implements domain.AgentStore over a mutex-guarded map.
type AgentStore struct {
	mu     sync.RWMutex
	agents map[string]*domain.TrackedAgent
}

func NewAgentStore() *AgentStore {
	return &AgentStore{
		agents: make(map[string]*domain.TrackedAgent),
	}
}

func (s *AgentStore) CreateAgent(agent *domain.TrackedAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if agent.ID == "" {
		agent.ID = uuid.NewString()
	}
	now := time.Now()
	agent.CreatedAt = now
	agent.UpdatedAt = now
	if agent.Status == "" {
		agent.Status = domain.AgentStatusIdle
	}

	s.agents[agent.ID] = clone(agent)
	return nil
}

func (s *AgentStore) GetAgent(id string) (*domain.TrackedAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, ok := s.agents[id]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return clone(agent), nil
}

func (s *AgentStore) ListAgents() ([]*domain.TrackedAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]*domain.TrackedAgent, 0, len(s.agents))
	for _, agent := range s.agents {
		agents = append(agents, clone(agent))
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})
	return agents, nil
}

func (s *AgentStore) UpdateAgent(agent *domain.TrackedAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[agent.ID]; !ok {
		return domain.ErrAgentNotFound
	}
	agent.UpdatedAt = time.Now()
	s.agents[agent.ID] = clone(agent)
	return nil
}

func (s *AgentStore) DeleteAgent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[id]; !ok {
		return domain.ErrAgentNotFound
	}
	delete(s.agents, id)
	return nil
}

func clone(a *domain.TrackedAgent) *domain.TrackedAgent {
	out := *a
	out.Capabilities = append([]domain.AgentCapability(nil), a.Capabilities...)
	return &out
}
