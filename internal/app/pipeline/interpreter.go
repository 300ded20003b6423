package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

// InterpreterStage extracts intent, entities and a data-requirement flag from
// the raw user query.
type InterpreterStage struct {
	llm domain.LLMClient
}

func NewInterpreterStage(llm domain.LLMClient) *InterpreterStage {
	return &InterpreterStage{llm: llm}
}

func (s *InterpreterStage) Name() string {
	return StageInterpreter
}

func (s *InterpreterStage) Run(ctx context.Context, pc Context) (Context, error) {
	interp := s.interpretQuery(ctx, pc.UserQuery)
	interp.Clamp()

	pc.Interpretation = interp

	return pc.WithMessage(domain.AgentMessage{
		Role:    domain.RoleAssistant,
		Content: "Interpretação: " + interp.Intent,
		Metadata: map[string]any{
			"agent":          s.Name(),
			"interpretation": interp,
		},
	}), nil
}

const interpreterPrompt = `Você é um agente especializado em interpretar consultas sobre dados de e-commerce Olist.

Dataset Olist contém:
- Produtos: categorias, dimensões, peso
- Clientes: localização (cidade, estado)
- Pedidos: status, valores, datas
- Pagamentos: tipos, parcelas, valores
- Avaliações: scores, comentários
- Vendedores: localização

Analise a pergunta e extraia:
1. Intenção principal (ex: "Listar produtos disponíveis por categoria")
2. Entidades mencionadas (categorias, períodos, estados, métricas)
3. Se requer consulta ao banco (quase sempre TRUE)
4. Nível de confiança da interpretação

IMPORTANTE: Seja específico na intenção!
- "Quais produtos temos?" → "Listar produtos ou categorias disponíveis no catálogo"
- "Quantos clientes?" → "Contar total de clientes e agrupar por estado"
- "Faturamento?" → "Calcular soma total de vendas"

IDIOMA: A interpretação (campo "intent") deve estar em PORTUGUÊS, independente do idioma da pergunta.

Pergunta: %q

Responda APENAS com JSON puro, sem markdown:
{
  "intent": "descrição específica da intenção EM PORTUGUÊS",
  "entities": { "key": "value" },
  "requiresData": true/false,
  "suggestedQueries": [],
  "confidence": 0.0-1.0
}`

// interpretQuery never fails: any model error or garbled output degrades into
// the default interpretation.
func (s *InterpreterStage) interpretQuery(ctx context.Context, query string) *domain.Interpretation {
	log := observability.LoggerFromContext(ctx)

	insights, err := s.llm.GenerateInsights(ctx, map[string]any{
		"query":  query,
		"prompt": fmt.Sprintf(interpreterPrompt, query),
	})
	if err != nil {
		log.Warn().Err(err).Msg("interpreter: insight generation failed, using fallback")
		return defaultInterpretation()
	}

	var raw string
	if len(insights) > 0 {
		raw = insights[0]
	}

	return parseInterpretation(raw)
}

func parseInterpretation(text string) *domain.Interpretation {
	block := extractJSONBlock(text)
	if block == "" {
		if strings.TrimSpace(text) == "" {
			return defaultInterpretation()
		}
		// The model answered in prose; keep it as the intent.
		return &domain.Interpretation{
			Intent:       text,
			Entities:     map[string]any{},
			RequiresData: true,
			Confidence:   0.7,
		}
	}

	var interp domain.Interpretation
	if err := json.Unmarshal([]byte(block), &interp); err != nil || interp.Intent == "" {
		return defaultInterpretation()
	}

	if interp.Entities == nil {
		interp.Entities = map[string]any{}
	}
	return &interp
}

func defaultInterpretation() *domain.Interpretation {
	return &domain.Interpretation{
		Intent:       "Análise geral de dados de e-commerce",
		Entities:     map[string]any{},
		RequiresData: true,
		Confidence:   0.5,
	}
}

// extractJSONBlock returns the first top-level {...} span in text, greedy to
// the last closing brace.
func extractJSONBlock(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
