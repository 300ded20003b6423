package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/olist-intelligence/internal/config"
	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

// GeminiClient implements domain.LLMClient on top of Vertex AI (Gemini).
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates the Vertex-backed client. Missing project
// configuration is a construction-time failure: the service refuses to start
// instead of failing per request.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if cfg.GCPProjectID == "" || cfg.GCPLocation == "" {
		return nil, fmt.Errorf("GCP project and location must be configured for the gemini provider")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.GCPProjectID,
		Location: cfg.GCPLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: cfg.ModelName,
	}, nil
}

// GenerateText runs a chat completion over the ordered message list. A leading
// system message becomes the system instruction; the call also works without
// one.
func (g *GeminiClient) GenerateText(ctx context.Context, messages []domain.AgentMessage) (string, error) {
	var system string
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			if system == "" {
				system = m.Content
				continue
			}
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			// user and tool turns both go in as user content
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: 8192,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

// GenerateInsights sends the payload's prompt as a single user turn. The
// whole completion is returned as one insight so structured output (JSON, SQL)
// survives intact; callers take insights[0].
func (g *GeminiClient) GenerateInsights(ctx context.Context, payload map[string]any) ([]string, error) {
	prompt, _ := payload["prompt"].(string)
	if prompt == "" {
		return nil, fmt.Errorf("insight payload has no prompt")
	}

	text, err := g.GenerateText(ctx, []domain.AgentMessage{
		{Role: domain.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	return []string{text}, nil
}
