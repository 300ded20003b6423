package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

// SuggestionStage always produces exactly three follow-up questions. Model
// output that cannot be parsed degrades to a keyword-matched static list, then
// to a generic trio, so the API contract holds under any model behavior.
type SuggestionStage struct {
	llm domain.LLMClient
}

func NewSuggestionStage(llm domain.LLMClient) *SuggestionStage {
	return &SuggestionStage{llm: llm}
}

func (s *SuggestionStage) Name() string {
	return StageSuggestion
}

const suggestionPrompt = `Você é um assistente especializado em sugerir próximas perguntas sobre dados de e-commerce.

Contexto da conversa:
Pergunta do usuário: %q
%s
%s
%s

IMPORTANTE: Baseado no contexto acima, sugira 3 perguntas RELEVANTES que o usuário pode querer fazer em seguida.

IDIOMA: Todas as sugestões DEVEM estar em PORTUGUÊS (pt-BR).

Diretrizes:
1. Sugestões devem ser perguntas completas e naturais
2. Relacionadas ao contexto da conversa atual
3. Explorar diferentes aspectos dos dados (análises complementares)
4. Variar entre perguntas simples e análises mais profundas
5. Focar em insights acionáveis

Exemplos de boas sugestões:
- "Quais são as 10 categorias com mais vendas?"
- "Como está a distribuição de clientes por região?"
- "Qual o ticket médio dos pedidos nos últimos 3 meses?"
- "Quais produtos têm melhor avaliação?"
- "Como está a taxa de entrega no prazo?"

Retorne APENAS as 3 perguntas, uma por linha, sem numeração ou markdown:`

func (s *SuggestionStage) Run(ctx context.Context, pc Context) (Context, error) {
	suggestions := s.generateSuggestions(ctx, pc)

	pc.Suggestions = suggestions

	return pc.WithMessage(domain.AgentMessage{
		Role:    domain.RoleAssistant,
		Content: "Sugestões: " + strings.Join(suggestions, "; "),
		Metadata: map[string]any{
			"agent":       s.Name(),
			"suggestions": suggestions,
		},
	}), nil
}

func (s *SuggestionStage) generateSuggestions(ctx context.Context, pc Context) []string {
	log := observability.LoggerFromContext(ctx)

	var intentLine, dataLine, responseLine string
	if pc.Interpretation != nil {
		intentLine = "Intenção: " + pc.Interpretation.Intent
	}
	if pc.QueryResults != nil {
		dataLine = fmt.Sprintf("Dados consultados: %d registros", len(pc.QueryResults))
	}
	if pc.RawResponse != "" {
		responseLine = fmt.Sprintf("Resposta gerada: %q", truncate(pc.RawResponse, 150))
	}

	prompt := fmt.Sprintf(suggestionPrompt, pc.UserQuery, intentLine, dataLine, responseLine)

	insights, err := s.llm.GenerateInsights(ctx, map[string]any{
		"prompt":    prompt,
		"userQuery": pc.UserQuery,
	})
	if err != nil {
		log.Warn().Err(err).Msg("suggestion: generation failed, using defaults")
		return defaultSuggestions(pc.UserQuery)
	}

	var raw string
	if len(insights) > 0 {
		raw = insights[0]
	}

	parsed := parseSuggestions(raw)
	if len(parsed) == 0 {
		return defaultSuggestions(pc.UserQuery)
	}
	for len(parsed) < 3 {
		// Top up from the static list so the contract of three holds.
		for _, fallback := range defaultSuggestions(pc.UserQuery) {
			if len(parsed) == 3 {
				break
			}
			if !contains(parsed, fallback) {
				parsed = append(parsed, fallback)
			}
		}
	}
	return parsed
}

var (
	numberingRe = regexp.MustCompile(`^\d+[.)]\s*`)
	bulletRe    = regexp.MustCompile(`^[-*•]\s*`)
	leadQuoteRe = regexp.MustCompile(`^["']\s*`)
	tailQuoteRe = regexp.MustCompile(`\s*["']$`)
)

// parseSuggestions keeps up to three lines that look like well-formed
// questions, stripped of numbering, bullets and quotes.
func parseSuggestions(text string) []string {
	var suggestions []string

	for _, line := range strings.Split(text, "\n") {
		cleaned := numberingRe.ReplaceAllString(line, "")
		cleaned = bulletRe.ReplaceAllString(cleaned, "")
		cleaned = leadQuoteRe.ReplaceAllString(cleaned, "")
		cleaned = tailQuoteRe.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)

		if len(cleaned) <= 10 || len(suggestions) >= 3 {
			continue
		}

		lower := strings.ToLower(cleaned)
		if strings.HasSuffix(cleaned, "?") || strings.Contains(lower, "qual") || strings.Contains(lower, "quantos") {
			suggestions = append(suggestions, cleaned)
		}
	}

	return suggestions
}

// defaultSuggestions picks a topic bucket by keyword, or a generic trio.
func defaultSuggestions(userQuery string) []string {
	query := strings.ToLower(userQuery)

	switch {
	case strings.Contains(query, "produto"):
		return []string{
			"Quais são as categorias de produtos mais vendidas?",
			"Qual o ticket médio por categoria de produto?",
			"Como está a distribuição de estoque por categoria?",
		}
	case strings.Contains(query, "cliente"):
		return []string{
			"Como está a distribuição de clientes por estado?",
			"Quais estados têm maior número de clientes?",
			"Qual o perfil de compra dos clientes por região?",
		}
	case strings.Contains(query, "pedido") || strings.Contains(query, "venda"):
		return []string{
			"Qual foi o faturamento total de vendas?",
			"Como está a taxa de conversão de pedidos?",
			"Quais são os horários de pico de vendas?",
		}
	case strings.Contains(query, "pagamento"):
		return []string{
			"Quais são os métodos de pagamento mais utilizados?",
			"Qual a média de parcelas por pedido?",
			"Como está a distribuição de valores de pagamento?",
		}
	case strings.Contains(query, "avalia") || strings.Contains(query, "review"):
		return []string{
			"Qual a avaliação média dos produtos?",
			"Quais categorias têm melhor avaliação?",
			"Quantas avaliações negativas temos?",
		}
	default:
		return []string{
			"Quais são as principais tendências de vendas?",
			"Como está o desempenho geral do e-commerce?",
			"Quais insights podemos extrair dos dados recentes?",
		}
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
