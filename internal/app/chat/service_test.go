package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/olist-intelligence/internal/adapters/llm"
	"github.com/PabloGalante/olist-intelligence/internal/app/pipeline"
	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

// fakeChatStore is an in-memory domain.ChatStore for service tests.
type fakeChatStore struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*domain.ChatSession
	messages map[domain.SessionID][]*domain.ChatMessage
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		sessions: make(map[domain.SessionID]*domain.ChatSession),
		messages: make(map[domain.SessionID][]*domain.ChatMessage),
	}
}

func (f *fakeChatStore) CreateSession(ctx context.Context, s *domain.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		s.ID = domain.SessionID(uuid.NewString())
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeChatStore) GetSession(ctx context.Context, id domain.SessionID) (*domain.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeChatStore) TouchSession(ctx context.Context, id domain.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		s.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeChatStore) ListSessions(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ChatSession
	for _, s := range f.sessions {
		if userID == "" || s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeChatStore) AppendMessage(ctx context.Context, m *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == "" {
		m.ID = domain.MessageID(uuid.NewString())
	}
	m.CreatedAt = time.Now()
	f.messages[m.SessionID] = append(f.messages[m.SessionID], m)
	return nil
}

func (f *fakeChatStore) GetMessagesBySession(ctx context.Context, id domain.SessionID, limit int) ([]*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[id]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

type fixedExecutor struct {
	rows []map[string]any
}

func (f *fixedExecutor) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	return f.rows, nil
}

func newTestService(store *fakeChatStore) *Service {
	executor := &fixedExecutor{rows: []map[string]any{
		{"category": "bed_bath_table", "total_products": int64(3029)},
	}}
	orch := pipeline.NewOrchestrator(llm.NewMockLLM(), executor, pipeline.Options{})
	return NewService(store, orch, nil)
}

func TestProcessCreatesSessionAndPersistsTurn(t *testing.T) {
	store := newFakeChatStore()
	svc := newTestService(store)

	resp, err := svc.Process(context.Background(), Request{Message: "Quais categorias temos?", UserID: "u1"})
	require.NoError(t, err)

	require.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.Response)
	assert.True(t, resp.Metadata.DataUsed)
	assert.Len(t, resp.Metadata.Suggestions, 3)
	assert.Greater(t, resp.Metadata.Confidence, 0.5)
	require.NotNil(t, resp.Metadata.Interpretation)

	msgs := store.messages[domain.SessionID(resp.SessionID)]
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, resp.Response, msgs[1].Content)
	assert.Contains(t, msgs[1].Metadata, `"confidence"`)
}

func TestProcessReusesExistingSession(t *testing.T) {
	store := newFakeChatStore()
	svc := newTestService(store)

	first, err := svc.Process(context.Background(), Request{Message: "Quais categorias temos?"})
	require.NoError(t, err)

	second, err := svc.Process(context.Background(), Request{
		Message:   "E quantos clientes?",
		SessionID: first.SessionID,
	})
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Len(t, store.messages[domain.SessionID(first.SessionID)], 4)
	assert.Len(t, store.sessions, 1)
}

func TestProcessRecreatesUnknownSessionID(t *testing.T) {
	store := newFakeChatStore()
	svc := newTestService(store)

	resp, err := svc.Process(context.Background(), Request{
		Message:   "Quais categorias temos?",
		SessionID: "client-kept-this-id",
	})
	require.NoError(t, err)

	assert.Equal(t, "client-kept-this-id", resp.SessionID)
	_, ok := store.sessions["client-kept-this-id"]
	assert.True(t, ok)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := newTestService(newFakeChatStore())

	_, err := svc.GetSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestToolPassthroughsWithoutClient(t *testing.T) {
	svc := newTestService(newFakeChatStore())

	tools, err := svc.ListTools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tools)
	assert.Empty(t, svc.ToolHealth(context.Background()))
	assert.Empty(t, svc.ToolServers())
}
