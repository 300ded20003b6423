package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

// ResponderStage produces the natural-language answer from the query results.
// The answer is always Portuguese and must stick to the data in the context.
type ResponderStage struct {
	llm domain.LLMClient
}

func NewResponderStage(llm domain.LLMClient) *ResponderStage {
	return &ResponderStage{llm: llm}
}

func (s *ResponderStage) Name() string {
	return StageResponder
}

const responderFallback = "Não foi possível gerar uma resposta adequada."

const responderPrompt = `Você é um assistente especializado em análise de dados de e-commerce Olist.

PERGUNTA ORIGINAL DO USUÁRIO: %q

%s

%s

IMPORTANTE: Responda EXATAMENTE o que foi perguntado. Não desvie do assunto.

IDIOMA: Responda SEMPRE em PORTUGUÊS (pt-BR), independente do idioma da pergunta.

Diretrizes:
- Responda DIRETAMENTE a pergunta feita
- Se perguntaram "quais produtos", liste produtos ou categorias
- Se perguntaram "quantos", dê o número total
- Se perguntaram "faturamento", foque em valores monetários
- Use números e estatísticas dos dados retornados
- Se houver muitos registros, resuma os principais (top 5-10)
- Seja conversacional mas FOCADO na pergunta
- NÃO invente informações que não estão nos dados
- NÃO desvie para análises não solicitadas
- SEMPRE use português brasileiro na resposta`

func (s *ResponderStage) Run(ctx context.Context, pc Context) (Context, error) {
	response := s.generateResponse(ctx, pc)

	pc.RawResponse = response

	return pc.WithMessage(domain.AgentMessage{
		Role:     domain.RoleAssistant,
		Content:  response,
		Metadata: map[string]any{"agent": s.Name()},
	}), nil
}

func (s *ResponderStage) generateResponse(ctx context.Context, pc Context) string {
	log := observability.LoggerFromContext(ctx)

	var intentLine string
	if pc.Interpretation != nil {
		intentLine = "Interpretação: " + pc.Interpretation.Intent
	}

	dataBlock := "Nenhum dado disponível."
	if len(pc.QueryResults) > 0 {
		rows, _ := json.MarshalIndent(pc.QueryResults, "", "  ")
		dataBlock = "Dados encontrados:\n" + string(rows)
	}

	prompt := fmt.Sprintf(responderPrompt, pc.UserQuery, intentLine, dataBlock)

	insights, err := s.llm.GenerateInsights(ctx, map[string]any{
		"prompt":    prompt,
		"userQuery": pc.UserQuery,
		"rowCount":  len(pc.QueryResults),
	})
	if err != nil {
		log.Warn().Err(err).Msg("responder: generation failed, using placeholder")
		return responderFallback
	}

	if len(insights) == 0 || strings.TrimSpace(insights[0]) == "" {
		return responderFallback
	}
	return insights[0]
}
