package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

// TaskStore implements domain.TaskStore over a mutex-guarded map.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.AgentTask
}

func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*domain.AgentTask),
	}
}

func (s *TaskStore) CreateTask(task *domain.AgentTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.StartedAt.IsZero() {
		task.StartedAt = time.Now()
	}
	if task.Status == "" {
		task.Status = domain.AgentStatusProcessing
	}

	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func (s *TaskStore) GetTask(id string) (*domain.AgentTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// ListTasks returns tasks for one agent, or every task when agentID is empty.
func (s *TaskStore) ListTasks(agentID string) ([]*domain.AgentTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*domain.AgentTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		if agentID != "" && task.AgentID != agentID {
			continue
		}
		tasks = append(tasks, cloneTask(task))
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].StartedAt.Before(tasks[j].StartedAt)
	})
	return tasks, nil
}

func (s *TaskStore) UpdateTask(task *domain.AgentTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func cloneTask(t *domain.AgentTask) *domain.AgentTask {
	out := *t
	if t.Input != nil {
		out.Input = make(map[string]any, len(t.Input))
		for k, v := range t.Input {
			out.Input[k] = v
		}
	}
	if t.Output != nil {
		out.Output = make(map[string]any, len(t.Output))
		for k, v := range t.Output {
			out.Output[k] = v
		}
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		out.CompletedAt = &ts
	}
	return &out
}
