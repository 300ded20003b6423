package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

// MockLLM is a deterministic provider for local development and tests. It
// recognizes each pipeline prompt by its fixed header and answers the way a
// well-behaved model would, always in Portuguese.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateText(ctx context.Context, messages []domain.AgentMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages")
	}
	last := messages[len(messages)-1].Content

	if strings.Contains(last, "decidir qual ferramenta") {
		return `{ "toolName": null }`, nil
	}

	return "Entendido: " + last, nil
}

func (m *MockLLM) GenerateInsights(ctx context.Context, payload map[string]any) ([]string, error) {
	prompt, _ := payload["prompt"].(string)

	switch {
	case strings.Contains(prompt, "interpretar consultas"):
		query, _ := payload["query"].(string)
		return []string{m.interpretation(query)}, nil

	case strings.Contains(prompt, "especialista em SQL"):
		query, _ := payload["userQuery"].(string)
		return []string{m.sql(query)}, nil

	case strings.Contains(prompt, "análise de dados de e-commerce Olist"):
		query, _ := payload["userQuery"].(string)
		rowCount, _ := payload["rowCount"].(int)
		return []string{m.answer(query, rowCount)}, nil

	case strings.Contains(prompt, "sugerir próximas perguntas"):
		return []string{
			"Quais são as 10 categorias com mais vendas?\n" +
				"Como está a distribuição de clientes por região?\n" +
				"Quais produtos têm melhor avaliação?",
		}, nil

	case strings.Contains(prompt, "editor especializado"):
		raw, _ := payload["rawResponse"].(string)
		if raw == "" {
			raw = "Não foi possível gerar uma resposta adequada."
		}
		return []string{raw}, nil
	}

	return []string{"Análise concluída com base nos dados disponíveis."}, nil
}

func (m *MockLLM) interpretation(query string) string {
	interp := domain.Interpretation{
		Intent:       "Análise geral de dados de e-commerce",
		Entities:     map[string]any{},
		RequiresData: true,
		Confidence:   0.9,
	}

	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "categoria") || strings.Contains(lower, "produto") || strings.Contains(lower, "product"):
		interp.Intent = "Listar categorias de produtos disponíveis no catálogo"
		interp.Entities["metric"] = "categorias"
	case strings.Contains(lower, "avalia") || strings.Contains(lower, "review") || strings.Contains(lower, "rating"):
		interp.Intent = "Calcular a média de avaliação dos pedidos"
		interp.Entities["metric"] = "avaliação"
	case strings.Contains(lower, "pedido") || strings.Contains(lower, "order"):
		interp.Intent = "Contar o total de pedidos realizados"
		interp.Entities["metric"] = "pedidos"
	case strings.Contains(lower, "cliente") || strings.Contains(lower, "customer"):
		interp.Intent = "Contar total de clientes e agrupar por estado"
		interp.Entities["metric"] = "clientes"
	}

	out, _ := json.Marshal(interp)
	return string(out)
}

func (m *MockLLM) sql(query string) string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "avalia") || strings.Contains(lower, "review") || strings.Contains(lower, "rating"):
		return "SELECT AVG(review_score) as media_avaliacao FROM olist_order_reviews"
	case strings.Contains(lower, "pedido") || strings.Contains(lower, "order"):
		return "SELECT order_status, COUNT(*) as total FROM olist_orders GROUP BY order_status ORDER BY total DESC"
	case strings.Contains(lower, "cliente") || strings.Contains(lower, "customer"):
		return "SELECT customer_state, COUNT(*) as total FROM olist_customers GROUP BY customer_state ORDER BY total DESC LIMIT 20"
	default:
		return "```sql\n" +
			"SELECT pct.product_category_name_english as category, COUNT(*) as total_products\n" +
			"FROM olist_products p\n" +
			"LEFT JOIN product_category_name_translation pct ON p.product_category_name = pct.product_category_name\n" +
			"GROUP BY pct.product_category_name_english\n" +
			"ORDER BY total_products DESC\n" +
			"LIMIT 20\n" +
			"```"
	}
}

func (m *MockLLM) answer(query string, rowCount int) string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "avalia") || strings.Contains(lower, "review") || strings.Contains(lower, "rating"):
		return fmt.Sprintf("A avaliação média dos pedidos foi calculada a partir de %d registros do banco de dados.", rowCount)
	case strings.Contains(lower, "pedido") || strings.Contains(lower, "order"):
		return fmt.Sprintf("Temos um total de pedidos distribuídos em %d faixas de status, segundo os dados consultados.", rowCount)
	case strings.Contains(lower, "cliente") || strings.Contains(lower, "customer"):
		return fmt.Sprintf("A distribuição de clientes por estado abrange %d registros consultados.", rowCount)
	default:
		return fmt.Sprintf("Encontramos %d categorias de produtos no catálogo, ordenadas pelo total de produtos.", rowCount)
	}
}
