package pipeline

import (
	"context"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

// stubLLM scripts both provider methods per test.
type stubLLM struct {
	textFn    func(ctx context.Context, messages []domain.AgentMessage) (string, error)
	insightFn func(ctx context.Context, payload map[string]any) ([]string, error)
}

func (s *stubLLM) GenerateText(ctx context.Context, messages []domain.AgentMessage) (string, error) {
	if s.textFn == nil {
		return "", nil
	}
	return s.textFn(ctx, messages)
}

func (s *stubLLM) GenerateInsights(ctx context.Context, payload map[string]any) ([]string, error) {
	if s.insightFn == nil {
		return nil, nil
	}
	return s.insightFn(ctx, payload)
}

// stubExecutor records the last executed query.
type stubExecutor struct {
	rows     []map[string]any
	err      error
	lastSQL  string
	executed int
}

func (s *stubExecutor) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	s.lastSQL = query
	s.executed++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}
