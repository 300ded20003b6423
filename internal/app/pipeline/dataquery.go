package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

// DataQueryStage asks the model for a read-only SQL query answering the
// interpreted intent and executes it against the relational store.
type DataQueryStage struct {
	llm      domain.LLMClient
	executor domain.QueryExecutor
}

func NewDataQueryStage(llm domain.LLMClient, executor domain.QueryExecutor) *DataQueryStage {
	return &DataQueryStage{llm: llm, executor: executor}
}

func (s *DataQueryStage) Name() string {
	return StageDataQuery
}

func (s *DataQueryStage) Run(ctx context.Context, pc Context) (Context, error) {
	if pc.Interpretation == nil || !pc.Interpretation.RequiresData {
		return pc, nil
	}

	query := s.generateSQL(ctx, pc)
	rows, summary := s.execute(ctx, query)

	pc.QueryResults = rows

	return pc.WithMessage(domain.AgentMessage{
		Role:    domain.RoleTool,
		Content: "Consulta executada: " + query,
		Metadata: map[string]any{
			"agent":    s.Name(),
			"rowCount": len(rows),
			"summary":  summary,
		},
	}), nil
}

const sqlPrompt = `Você é um especialista em SQL e banco de dados de e-commerce Olist.

Schema do banco de dados:
%s

Intenção do usuário: %s
Pergunta original: %q
Entidades identificadas: %s

IMPORTANTE: Gere SQL que responda EXATAMENTE o que foi perguntado.

Exemplos:
- "Quais produtos temos?" → SELECT com categorias e contagem
- "Quantos clientes?" → SELECT COUNT com agrupamento
- "Faturamento total?" → SELECT SUM de valores
- "Top 10 categorias?" → SELECT com GROUP BY e ORDER BY

Retorne APENAS o SQL, sem explicações, comentários ou markdown.

Regras:
- Use LIMIT apropriado (20-50 para listagens, ilimitado para agregações)
- Use JOINs quando necessário para dados relacionados
- SEMPRE use agregações (COUNT, SUM, AVG) para perguntas de quantidade/total
- Para perguntas "quais/quantos", use GROUP BY com COUNT
- Ordene os resultados de forma relevante (DESC para rankings)
- Traduza categorias com product_category_name_translation quando possível
- Não use DROP, DELETE, UPDATE ou INSERT`

// fallbackQuery is substituted whenever SQL generation or extraction fails.
const fallbackQuery = `SELECT
  pct.product_category_name_english as category,
  COUNT(*) as total_products
FROM olist_products p
LEFT JOIN product_category_name_translation pct
  ON p.product_category_name = pct.product_category_name
GROUP BY pct.product_category_name_english
ORDER BY total_products DESC
LIMIT 20`

// forbiddenKeywords is the denylist applied to generated SQL before execution.
// A read-only database role backs this up at the store level.
var forbiddenKeywords = []string{"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "TRUNCATE", "CREATE"}

func (s *DataQueryStage) generateSQL(ctx context.Context, pc Context) string {
	log := observability.LoggerFromContext(ctx)

	entities, _ := json.Marshal(pc.Interpretation.Entities)
	prompt := fmt.Sprintf(sqlPrompt, olistSchema, pc.Interpretation.Intent, pc.UserQuery, string(entities))

	insights, err := s.llm.GenerateInsights(ctx, map[string]any{
		"prompt":         prompt,
		"userQuery":      pc.UserQuery,
		"interpretation": pc.Interpretation,
	})
	if err != nil {
		log.Warn().Err(err).Msg("data_query: SQL generation failed, using fallback query")
		return fallbackQuery
	}

	var raw string
	if len(insights) > 0 {
		raw = insights[0]
	}

	query := extractSQL(raw)
	if query == "" {
		return fallbackQuery
	}
	if containsForbiddenKeyword(query) {
		log.Warn().Str("query", query).Msg("data_query: generated SQL rejected by keyword guard")
		return fallbackQuery
	}
	return query
}

func (s *DataQueryStage) execute(ctx context.Context, query string) ([]map[string]any, string) {
	log := observability.LoggerFromContext(ctx)

	rows, err := s.executor.ExecuteQuery(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("data_query: query execution failed")
		return []map[string]any{}, "Erro ao executar consulta"
	}

	return rows, fmt.Sprintf("Encontrados %d registros", len(rows))
}

var sqlFenceRe = regexp.MustCompile("(?s)```sql\\s*\\n(.*?)\\n```")

// extractSQL pulls the query out of a fenced code block, or accepts the raw
// text verbatim when it already starts with SELECT.
func extractSQL(text string) string {
	if m := sqlFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	clean := strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToUpper(clean), "SELECT") {
		return clean
	}

	return ""
}

var forbiddenRe = regexp.MustCompile(`\b(` + strings.Join(forbiddenKeywords, "|") + `)\b`)

func containsForbiddenKeyword(query string) bool {
	return forbiddenRe.MatchString(strings.ToUpper(query))
}
