package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

// EnhancerStage rewrites the raw response for clarity and tone, forces it into
// Portuguese, and derives the sources and confidence the HTTP layer surfaces.
// Its final assistant message is "the answer".
type EnhancerStage struct {
	llm domain.LLMClient
}

func NewEnhancerStage(llm domain.LLMClient) *EnhancerStage {
	return &EnhancerStage{llm: llm}
}

func (s *EnhancerStage) Name() string {
	return StageEnhancer
}

const enhancerPrompt = `Você é um editor especializado em melhorar respostas sobre dados de negócios.

Resposta original:
%q

Dados utilizados: %s

IDIOMA: A resposta DEVE ser SEMPRE em PORTUGUÊS (pt-BR), independente do idioma original.

Melhore esta resposta seguindo estas diretrizes:
1. Torne mais clara e estruturada em PORTUGUÊS
2. Adicione formatação apropriada (se aplicável)
3. Destaque métricas importantes
4. Mantenha tom profissional mas acessível
5. Se a resposta original estiver em outro idioma, TRADUZA para português brasileiro

Retorne APENAS a resposta melhorada em português brasileiro.`

func (s *EnhancerStage) Run(ctx context.Context, pc Context) (Context, error) {
	if pc.RawResponse == "" {
		return pc, nil
	}

	content := s.enhance(ctx, pc)

	return pc.WithMessage(domain.AgentMessage{
		Role:    domain.RoleAssistant,
		Content: content,
		Metadata: map[string]any{
			"agent":       s.Name(),
			"sources":     extractSources(pc),
			"confidence":  calculateConfidence(pc),
			"suggestions": pc.Suggestions,
		},
	}), nil
}

func (s *EnhancerStage) enhance(ctx context.Context, pc Context) string {
	log := observability.LoggerFromContext(ctx)

	dataUsed := "Não"
	if pc.QueryResults != nil {
		dataUsed = "Sim"
	}

	prompt := fmt.Sprintf(enhancerPrompt, pc.RawResponse, dataUsed)

	insights, err := s.llm.GenerateInsights(ctx, map[string]any{
		"prompt":      prompt,
		"rawResponse": pc.RawResponse,
	})
	if err != nil {
		log.Warn().Err(err).Msg("enhancer: generation failed, keeping raw response")
		return pc.RawResponse
	}

	if len(insights) == 0 || strings.TrimSpace(insights[0]) == "" {
		return pc.RawResponse
	}
	return insights[0]
}

// extractSources infers human-readable provenance labels from which optional
// context fields are populated.
func extractSources(pc Context) []string {
	sources := []string{}

	if len(pc.QueryResults) > 0 {
		sources = append(sources, "Banco de dados de produtos", "Histórico de pedidos")
	}
	if pc.Interpretation != nil {
		sources = append(sources, "Análise de intenção com IA")
	}

	return sources
}

// calculateConfidence weighs interpretation confidence and data presence:
// base 0.5, +0.3 x interpretation confidence, +0.2 when rows came back,
// capped at 1.0.
func calculateConfidence(pc Context) float64 {
	confidence := 0.5

	if pc.Interpretation != nil {
		confidence += pc.Interpretation.Confidence * 0.3
	}
	if len(pc.QueryResults) > 0 {
		confidence += 0.2
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
