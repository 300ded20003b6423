package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/olist-intelligence/internal/adapters/http"
	"github.com/PabloGalante/olist-intelligence/internal/adapters/llm"
	memstore "github.com/PabloGalante/olist-intelligence/internal/adapters/storage/memory"
	"github.com/PabloGalante/olist-intelligence/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/olist-intelligence/internal/app/agents"
	"github.com/PabloGalante/olist-intelligence/internal/app/analytics"
	"github.com/PabloGalante/olist-intelligence/internal/app/chat"
	"github.com/PabloGalante/olist-intelligence/internal/app/health"
	"github.com/PabloGalante/olist-intelligence/internal/app/pipeline"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	llmClient := llm.NewMockLLM()
	orch := pipeline.NewOrchestrator(llmClient, store, pipeline.Options{})

	chatSvc := chat.NewService(store, orch, nil)
	agentsSvc := agents.NewService(memstore.NewAgentStore(), memstore.NewTaskStore(), llmClient)
	analyticsSvc := analytics.NewService(llmClient)
	healthSvc := health.NewService("test", "development", map[string]health.Pinger{"database": store})

	return httpadapter.NewServer(chatSvc, agentsSvc, analyticsSvc, healthSvc, false)
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRootInfo(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "olist-intelligence")
	assert.Contains(t, string(env.Data), "/api/v1/chat")
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Timestamp)
	assert.Contains(t, string(env.Data), `"status":"ok"`)

	rec, env = do(t, h, http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"ready":true`)
}

func TestChatTurn(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/v1/chat", map[string]string{
		"message": "Quais categorias de produtos temos?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var resp chat.Response
	require.NoError(t, json.Unmarshal(env.Data, &resp))

	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.Response)
	assert.Len(t, resp.Metadata.Suggestions, 3)

	// The session is now retrievable with both persisted turns.
	rec, env = do(t, h, http.MethodGet, "/api/v1/chat/sessions/"+resp.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), resp.SessionID)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/chat/sessions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatValidation(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/v1/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "message is required", env.Error)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("{not json"))
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestChatSessionNotFound(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/chat/sessions/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session not found", env.Error)
}

func TestMCPEndpointsWithoutServers(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/chat/mcp/tools", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"tools":[]`)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/chat/mcp/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/chat/mcp/servers", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"servers":[]`)
}

func TestAnalyticsEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/analytics/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "revenue")

	rec, _ = do(t, h, http.MethodPost, "/api/v1/analytics/query", map[string]any{
		"metrics":   []string{"revenue"},
		"startDate": "2024-01-01",
		"endDate":   "2024-01-07",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/analytics/query", map[string]any{
		"metrics":   []string{"revenue"},
		"startDate": "backwards",
		"endDate":   "2024-01-07",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid analytics query", env.Error)
	assert.NotEmpty(t, env.Message, "detail is visible outside production")

	rec, _ = do(t, h, http.MethodPost, "/api/v1/analytics/insights", map[string]any{
		"metrics": []string{"orders"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAgentEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/v1/agents", map[string]any{
		"name":         "forecaster",
		"capabilities": []string{"forecasting"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"ID"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/agents", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/agents/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/agents/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "agent not found", env.Error)

	rec, env = do(t, h, http.MethodPost, "/api/v1/agents/"+created.ID+"/tasks", map[string]any{
		"type": "anomaly-detection",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid task", env.Error)

	rec, env = do(t, h, http.MethodPost, "/api/v1/agents/"+created.ID+"/tasks", map[string]any{
		"type":  "forecasting",
		"input": map[string]any{"metric": "revenue"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var task struct {
		ID string `json:"ID"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &task))

	rec, _ = do(t, h, http.MethodGet, "/api/v1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/api/v1/agents/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPrometheusEndpoint(t *testing.T) {
	h := newTestServer(t)

	// Generate at least one counted request first.
	rec, _ := do(t, h, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)

	assert.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Body.String(), "http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t)

	rec, _ := do(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, "fixed-id", out.Header().Get("X-Request-ID"))
}
