package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// AIProvider selects which LLM adapter backs the pipeline.
type AIProvider string

const (
	ProviderGemini AIProvider = "gemini"
	ProviderMock   AIProvider = "mock"
)

// ToolServer configures one external tool server.
type ToolServer struct {
	Name        string
	URL         string
	APIKey      string
	Description string
	Enabled     bool
}

type Config struct {
	Environment Environment
	Port        string
	APIVersion  string

	DatabasePath string

	AIProvider   AIProvider
	GCPProjectID string
	GCPLocation  string
	ModelName    string

	EnableTools bool
	ToolServers []ToolServer

	LogLevel string
}

// Load reads all configuration from the environment. Missing required values
// for the selected provider are a startup failure, never a per-request one.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OLIST")
	v.AutomaticEnv()

	v.SetDefault("ENV", string(EnvDevelopment))
	v.SetDefault("PORT", "3000")
	v.SetDefault("API_VERSION", "v1")
	v.SetDefault("DB_PATH", "olist.db")
	v.SetDefault("AI_PROVIDER", string(ProviderMock))
	v.SetDefault("GCP_LOCATION", "us-central1")
	v.SetDefault("MODEL_NAME", "gemini-2.5-flash")
	v.SetDefault("ENABLE_TOOLS", false)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Environment:  Environment(v.GetString("ENV")),
		Port:         v.GetString("PORT"),
		APIVersion:   v.GetString("API_VERSION"),
		DatabasePath: v.GetString("DB_PATH"),
		AIProvider:   AIProvider(strings.ToLower(v.GetString("AI_PROVIDER"))),
		GCPProjectID: v.GetString("GCP_PROJECT"),
		GCPLocation:  v.GetString("GCP_LOCATION"),
		ModelName:    v.GetString("MODEL_NAME"),
		EnableTools:  v.GetBool("ENABLE_TOOLS"),
		ToolServers:  loadToolServers(v),
		LogLevel:     v.GetString("LOG_LEVEL"),
	}

	if cfg.AIProvider == ProviderGemini && cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("OLIST_GCP_PROJECT must be set when AI provider is %q", cfg.AIProvider)
	}

	return cfg, nil
}

// loadToolServers reads up to three numbered tool server blocks from the
// environment, the way the deployment scripts provision them.
func loadToolServers(v *viper.Viper) []ToolServer {
	var servers []ToolServer

	for i := 1; i <= 3; i++ {
		prefix := fmt.Sprintf("MCP_SERVER_%d", i)

		url := v.GetString(prefix + "_URL")
		if url == "" {
			continue
		}

		name := v.GetString(prefix + "_NAME")
		if name == "" {
			name = fmt.Sprintf("mcp-server-%d", i)
		}

		enabled := true
		if v.IsSet(prefix + "_ENABLED") {
			enabled = v.GetBool(prefix + "_ENABLED")
		}

		servers = append(servers, ToolServer{
			Name:        name,
			URL:         url,
			APIKey:      v.GetString(prefix + "_API_KEY"),
			Description: v.GetString(prefix + "_DESCRIPTION"),
			Enabled:     enabled,
		})
	}

	return servers
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
