package mcp

import (
	"context"
	"fmt"

	"github.com/PabloGalante/olist-intelligence/internal/config"
	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

// Service aggregates every configured tool server behind domain.ToolClient.
// A server that fails to answer is skipped, not fatal: the pipeline keeps
// whatever tools the healthy servers expose.
type Service struct {
	servers []config.ToolServer
	clients map[string]*Client
}

func NewService(servers []config.ToolServer) *Service {
	s := &Service{
		clients: make(map[string]*Client),
	}

	for _, srv := range servers {
		if !srv.Enabled {
			continue
		}
		s.servers = append(s.servers, srv)
		s.clients[srv.Name] = NewClient(srv.URL, srv.APIKey)
	}

	return s
}

// ListTools merges the catalogs of all servers, tagging each tool with its
// server name.
func (s *Service) ListTools(ctx context.Context) ([]domain.ToolDescriptor, error) {
	log := observability.LoggerFromContext(ctx)

	var all []domain.ToolDescriptor
	for _, srv := range s.servers {
		tools, err := s.clients[srv.Name].ListTools(ctx)
		if err != nil {
			log.Warn().Err(err).Str("server", srv.Name).Msg("mcp: failed to list tools")
			continue
		}
		for _, tool := range tools {
			tool.ServerName = srv.Name
			all = append(all, tool)
		}
	}
	return all, nil
}

func (s *Service) CallTool(ctx context.Context, serverName, toolName string, args map[string]any) (*domain.ToolCallResult, error) {
	client, ok := s.clients[serverName]
	if !ok {
		return nil, fmt.Errorf("MCP server %q not found", serverName)
	}
	return client.CallTool(ctx, toolName, args)
}

// Health probes every server.
func (s *Service) Health(ctx context.Context) map[string]bool {
	health := make(map[string]bool, len(s.servers))
	for _, srv := range s.servers {
		health[srv.Name] = s.clients[srv.Name].Ping(ctx)
	}
	return health
}

// Servers returns the configured server list for the introspection endpoints.
func (s *Service) Servers() []domain.ToolServerInfo {
	infos := make([]domain.ToolServerInfo, 0, len(s.servers))
	for _, srv := range s.servers {
		infos = append(infos, domain.ToolServerInfo{
			Name:        srv.Name,
			URL:         srv.URL,
			Description: srv.Description,
			Enabled:     srv.Enabled,
		})
	}
	return infos
}
