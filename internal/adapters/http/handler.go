// Package httpadapter exposes the application services over a JSON HTTP API.
// Every payload travels in a uniform envelope; error detail is hidden in
// production.
package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PabloGalante/olist-intelligence/internal/app/agents"
	"github.com/PabloGalante/olist-intelligence/internal/app/analytics"
	"github.com/PabloGalante/olist-intelligence/internal/app/chat"
	"github.com/PabloGalante/olist-intelligence/internal/app/health"
	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

type Server struct {
	chat      *chat.Service
	agents    *agents.Service
	analytics *analytics.Service
	health    *health.Service

	hideErrorDetails bool
}

// NewServer wires every route under /api/v1 plus the Prometheus endpoint.
func NewServer(chatSvc *chat.Service, agentsSvc *agents.Service, analyticsSvc *analytics.Service, healthSvc *health.Service, hideErrorDetails bool) http.Handler {
	s := &Server{
		chat:             chatSvc,
		agents:           agentsSvc,
		analytics:        analyticsSvc,
		health:           healthSvc,
		hideErrorDetails: hideErrorDetails,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/health/ready", s.handleReady)

	mux.HandleFunc("POST /api/v1/chat", s.handleChat)
	mux.HandleFunc("GET /api/v1/chat/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/v1/chat/sessions/{id}", s.handleGetSession)

	mux.HandleFunc("GET /api/v1/chat/mcp/tools", s.handleMCPTools)
	mux.HandleFunc("GET /api/v1/chat/mcp/health", s.handleMCPHealth)
	mux.HandleFunc("GET /api/v1/chat/mcp/servers", s.handleMCPServers)

	mux.HandleFunc("GET /api/v1/analytics/metrics", s.handleAnalyticsMetrics)
	mux.HandleFunc("POST /api/v1/analytics/query", s.handleAnalyticsQuery)
	mux.HandleFunc("POST /api/v1/analytics/insights", s.handleAnalyticsInsights)

	mux.HandleFunc("POST /api/v1/agents", s.handleCreateAgent)
	mux.HandleFunc("GET /api/v1/agents", s.handleListAgents)
	mux.HandleFunc("GET /api/v1/agents/{id}", s.handleGetAgent)
	mux.HandleFunc("PUT /api/v1/agents/{id}", s.handleUpdateAgent)
	mux.HandleFunc("DELETE /api/v1/agents/{id}", s.handleDeleteAgent)
	mux.HandleFunc("POST /api/v1/agents/{id}/tasks", s.handleDispatchTask)
	mux.HandleFunc("GET /api/v1/agents/{id}/tasks", s.handleListTasks)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.handleGetTask)

	mux.Handle("GET /metrics", promhttp.Handler())

	return chainMiddlewares(mux,
		withMetrics,
		withCORS,
		withLogging,
		withRecovery,
		withRequestID,
	)
}

// handleInfo is the root banner: name, version and where the API lives.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]any{
		"name":    "olist-intelligence",
		"version": s.health.Status().Version,
		"api":     "/api/v1",
		"endpoints": []string{
			"/api/v1/chat",
			"/api/v1/chat/sessions",
			"/api/v1/chat/mcp/tools",
			"/api/v1/analytics/query",
			"/api/v1/agents",
			"/api/v1/health",
			"/metrics",
		},
	})
}

// ─── health ───

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, s.health.Status())
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	readiness := s.health.Ready(r.Context())
	status := http.StatusOK
	if !readiness.Ready {
		status = http.StatusServiceUnavailable
	}
	s.writeData(w, status, readiness)
}

// ─── chat ───

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required", nil)
		return
	}

	resp, err := s.chat.Process(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to process message", err)
		return
	}
	s.writeData(w, http.StatusOK, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}

	sessions, err := s.chat.ListSessions(r.Context(), r.URL.Query().Get("userId"), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list sessions", err)
		return
	}
	if sessions == nil {
		sessions = []*domain.ChatSession{}
	}
	s.writeData(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.chat.GetSession(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load session", err)
		return
	}
	s.writeData(w, http.StatusOK, view)
}

// ─── tool servers ───

func (s *Server) handleMCPTools(w http.ResponseWriter, r *http.Request) {
	tools, err := s.chat.ListTools(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list tools", err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]any{"tools": tools})
}

func (s *Server) handleMCPHealth(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]any{"servers": s.chat.ToolHealth(r.Context())})
}

func (s *Server) handleMCPServers(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]any{"servers": s.chat.ToolServers()})
}

// ─── analytics ───

func (s *Server) handleAnalyticsMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]any{"metrics": s.analytics.Metrics()})
}

func (s *Server) handleAnalyticsQuery(w http.ResponseWriter, r *http.Request) {
	var query domain.AnalyticsQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	result, err := s.analytics.Query(r.Context(), query)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid analytics query", err)
		return
	}
	s.writeData(w, http.StatusOK, result)
}

func (s *Server) handleAnalyticsInsights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Metrics []domain.AnalyticsMetric `json:"metrics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	insights, err := s.analytics.Insights(r.Context(), req.Metrics)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid insights request", err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]any{"insights": insights})
}

// ─── agents ───

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req agents.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	agent, err := s.agents.CreateAgent(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid agent", err)
		return
	}
	s.writeData(w, http.StatusCreated, agent)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	list, err := s.agents.ListAgents(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list agents", err)
		return
	}
	s.writeData(w, http.StatusOK, list)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := s.agents.GetAgent(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrAgentNotFound) {
		s.writeError(w, http.StatusNotFound, "agent not found", nil)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load agent", err)
		return
	}
	s.writeData(w, http.StatusOK, agent)
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	var req agents.UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	agent, err := s.agents.UpdateAgent(r.Context(), r.PathValue("id"), req)
	if errors.Is(err, domain.ErrAgentNotFound) {
		s.writeError(w, http.StatusNotFound, "agent not found", nil)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid agent update", err)
		return
	}
	s.writeData(w, http.StatusOK, agent)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	err := s.agents.DeleteAgent(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrAgentNotFound) {
		s.writeError(w, http.StatusNotFound, "agent not found", nil)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to delete agent", err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}

func (s *Server) handleDispatchTask(w http.ResponseWriter, r *http.Request) {
	var req agents.DispatchTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	task, err := s.agents.DispatchTask(r.Context(), r.PathValue("id"), req)
	if errors.Is(err, domain.ErrAgentNotFound) {
		s.writeError(w, http.StatusNotFound, "agent not found", nil)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid task", err)
		return
	}
	s.writeData(w, http.StatusAccepted, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if _, err := s.agents.GetAgent(r.Context(), r.PathValue("id")); errors.Is(err, domain.ErrAgentNotFound) {
		s.writeError(w, http.StatusNotFound, "agent not found", nil)
		return
	}

	tasks, err := s.agents.ListTasks(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}
	s.writeData(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.agents.GetTask(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrTaskNotFound) {
		s.writeError(w, http.StatusNotFound, "task not found", nil)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load task", err)
		return
	}
	s.writeData(w, http.StatusOK, task)
}
