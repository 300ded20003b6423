package main

import (
	"context"
	"net/http"

	httpadapter "github.com/PabloGalante/olist-intelligence/internal/adapters/http"
	"github.com/PabloGalante/olist-intelligence/internal/adapters/llm"
	"github.com/PabloGalante/olist-intelligence/internal/adapters/mcp"
	memstore "github.com/PabloGalante/olist-intelligence/internal/adapters/storage/memory"
	"github.com/PabloGalante/olist-intelligence/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/olist-intelligence/internal/app/agents"
	"github.com/PabloGalante/olist-intelligence/internal/app/analytics"
	"github.com/PabloGalante/olist-intelligence/internal/app/chat"
	"github.com/PabloGalante/olist-intelligence/internal/app/health"
	"github.com/PabloGalante/olist-intelligence/internal/app/pipeline"
	"github.com/PabloGalante/olist-intelligence/internal/config"
	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		observability.Logger().Fatal().Err(err).Msg("invalid configuration")
	}
	observability.SetLevel(cfg.LogLevel)
	log := observability.Logger()

	var llmClient domain.LLMClient
	switch cfg.AIProvider {
	case config.ProviderGemini:
		log.Info().Str("model", cfg.ModelName).Msg("using Vertex AI provider")
		llmClient, err = llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Vertex AI client")
		}
	default:
		log.Info().Msg("using mock LLM provider")
		llmClient = llm.NewMockLLM()
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer store.Close()
	log.Info().Str("path", cfg.DatabasePath).Msg("database ready")

	var tools domain.ToolClient
	if len(cfg.ToolServers) > 0 {
		tools = mcp.NewService(cfg.ToolServers)
		log.Info().Int("servers", len(cfg.ToolServers)).Msg("tool servers configured")
	}

	orch := pipeline.NewOrchestrator(llmClient, store, pipeline.Options{
		Tools:       tools,
		EnableTools: cfg.EnableTools,
	})

	chatSvc := chat.NewService(store, orch, tools)
	agentsSvc := agents.NewService(memstore.NewAgentStore(), memstore.NewTaskStore(), llmClient)
	analyticsSvc := analytics.NewService(llmClient)
	healthSvc := health.NewService(version, string(cfg.Environment), map[string]health.Pinger{
		"database": store,
	})

	handler := httpadapter.NewServer(chatSvc, agentsSvc, analyticsSvc, healthSvc, cfg.IsProduction())

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", string(cfg.Environment)).Msg("olist-intelligence API listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
