// Package chat coordinates one conversation turn: session bookkeeping,
// history loading, the pipeline run, and persistence of the final answer.
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PabloGalante/olist-intelligence/internal/app/pipeline"
	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

const historyLimit = 50

// Service is the chat use case. Tools is nil when no tool servers are
// configured; the introspection endpoints then report an empty setup.
type Service struct {
	store domain.ChatStore
	orch  *pipeline.Orchestrator
	tools domain.ToolClient
}

func NewService(store domain.ChatStore, orch *pipeline.Orchestrator, tools domain.ToolClient) *Service {
	return &Service{store: store, orch: orch, tools: tools}
}

// Request is one inbound user turn. SessionID empty means "start a new
// conversation".
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// ResponseMetadata is the structured companion to the answer text.
type ResponseMetadata struct {
	Interpretation *domain.Interpretation `json:"interpretation,omitempty"`
	DataUsed       bool                   `json:"dataUsed"`
	Sources        []string               `json:"sources,omitempty"`
	Confidence     float64                `json:"confidence"`
	Suggestions    []string               `json:"suggestions,omitempty"`
}

// Response is the chat endpoint payload. History is the full pipeline trail
// for this turn, including the intermediate stage messages.
type Response struct {
	SessionID string                `json:"sessionId"`
	Response  string                `json:"response"`
	Metadata  ResponseMetadata      `json:"metadata"`
	History   []domain.AgentMessage `json:"history"`
}

// Process runs one full turn. The pipeline itself never fails the turn; only
// session persistence errors bubble up.
func (s *Service) Process(ctx context.Context, req Request) (*Response, error) {
	log := observability.LoggerFromContext(ctx)

	session, err := s.ensureSession(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   req.Message,
	}); err != nil {
		return nil, fmt.Errorf("persisting user message: %w", err)
	}

	history, err := s.loadHistory(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	pc := s.orch.Process(ctx, string(session.ID), req.Message, history)

	answer, meta := finalAnswer(pc)

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}
	if err := s.store.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: session.ID,
		Role:      domain.RoleAssistant,
		Content:   answer,
		Metadata:  string(metaJSON),
	}); err != nil {
		return nil, fmt.Errorf("persisting assistant message: %w", err)
	}

	if err := s.store.TouchSession(ctx, session.ID); err != nil {
		log.Warn().Err(err).Str("session_id", string(session.ID)).Msg("chat: failed to touch session")
	}

	return &Response{
		SessionID: string(session.ID),
		Response:  answer,
		Metadata:  meta,
		History:   pc.History,
	}, nil
}

func (s *Service) ensureSession(ctx context.Context, req Request) (*domain.ChatSession, error) {
	if req.SessionID != "" {
		session, err := s.store.GetSession(ctx, domain.SessionID(req.SessionID))
		if err == nil {
			return session, nil
		}
		if err != domain.ErrSessionNotFound {
			return nil, fmt.Errorf("loading session: %w", err)
		}
		// Unknown id: recreate under the same id so the client keeps its handle.
		session = &domain.ChatSession{
			ID:     domain.SessionID(req.SessionID),
			UserID: domain.UserID(req.UserID),
		}
		if err := s.store.CreateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("recreating session: %w", err)
		}
		return session, nil
	}

	session := &domain.ChatSession{UserID: domain.UserID(req.UserID)}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}

func (s *Service) loadHistory(ctx context.Context, id domain.SessionID) ([]domain.AgentMessage, error) {
	stored, err := s.store.GetMessagesBySession(ctx, id, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	history := make([]domain.AgentMessage, 0, len(stored))
	for _, msg := range stored {
		am := domain.AgentMessage{Role: msg.Role, Content: msg.Content}
		if msg.Metadata != "" {
			var meta map[string]any
			if err := json.Unmarshal([]byte(msg.Metadata), &meta); err == nil {
				am.Metadata = meta
			}
		}
		history = append(history, am)
	}
	return history, nil
}

// finalAnswer pulls the enhancer's closing assistant message out of the trail.
// A turn where every stage failed still produces a Portuguese apology.
func finalAnswer(pc pipeline.Context) (string, ResponseMetadata) {
	meta := ResponseMetadata{
		Interpretation: pc.Interpretation,
		DataUsed:       len(pc.QueryResults) > 0,
		Suggestions:    pc.Suggestions,
	}

	for i := len(pc.History) - 1; i >= 0; i-- {
		msg := pc.History[i]
		if msg.Role != domain.RoleAssistant {
			continue
		}
		if sources, ok := msg.Metadata["sources"].([]string); ok {
			meta.Sources = sources
		}
		if confidence, ok := msg.Metadata["confidence"].(float64); ok {
			meta.Confidence = confidence
		}
		return msg.Content, meta
	}

	return "Desculpe, não foi possível processar sua pergunta no momento.", meta
}

// SessionView bundles a session with its stored messages.
type SessionView struct {
	Session  *domain.ChatSession   `json:"session"`
	Messages []*domain.ChatMessage `json:"messages"`
}

func (s *Service) GetSession(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.store.GetSession(ctx, domain.SessionID(id))
	if err != nil {
		return nil, err
	}
	messages, err := s.store.GetMessagesBySession(ctx, session.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	return &SessionView{Session: session, Messages: messages}, nil
}

func (s *Service) ListSessions(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error) {
	return s.store.ListSessions(ctx, domain.UserID(userID), limit)
}

// ─── tool server introspection ───

func (s *Service) ListTools(ctx context.Context) ([]domain.ToolDescriptor, error) {
	if s.tools == nil {
		return []domain.ToolDescriptor{}, nil
	}
	return s.tools.ListTools(ctx)
}

func (s *Service) ToolHealth(ctx context.Context) map[string]bool {
	if s.tools == nil {
		return map[string]bool{}
	}
	return s.tools.Health(ctx)
}

func (s *Service) ToolServers() []domain.ToolServerInfo {
	if s.tools == nil {
		return []domain.ToolServerInfo{}
	}
	return s.tools.Servers()
}
