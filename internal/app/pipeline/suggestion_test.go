package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestionsStripsDecoration(t *testing.T) {
	text := "1. Quais são as categorias mais vendidas?\n" +
		"- \"Como está a distribuição de clientes por estado?\"\n" +
		"ok\n" +
		"* Qual o ticket médio dos pedidos recentes?"

	got := parseSuggestions(text)

	require.Len(t, got, 3)
	assert.Equal(t, "Quais são as categorias mais vendidas?", got[0])
	assert.Equal(t, "Como está a distribuição de clientes por estado?", got[1])
	assert.Equal(t, "Qual o ticket médio dos pedidos recentes?", got[2])
}

func TestParseSuggestionsCapsAtThree(t *testing.T) {
	text := strings.Repeat("Quais produtos têm melhor avaliação no catálogo?\n", 6)
	assert.Len(t, parseSuggestions(text), 3)
}

func TestParseSuggestionsRejectsNonQuestions(t *testing.T) {
	got := parseSuggestions("Aqui estão algumas ideias interessantes para explorar.\ncurto?\n")
	assert.Empty(t, got)
}

func TestSuggestionAlwaysThreeOnModelError(t *testing.T) {
	llm := &stubLLM{
		insightFn: func(ctx context.Context, payload map[string]any) ([]string, error) {
			return nil, errors.New("model down")
		},
	}

	stage := NewSuggestionStage(llm)
	out, err := stage.Run(context.Background(), NewContext("s1", "me fale sobre clientes", nil))
	require.NoError(t, err)

	require.Len(t, out.Suggestions, 3)
	assert.Equal(t, "Como está a distribuição de clientes por estado?", out.Suggestions[0])
}

func TestSuggestionTopsUpPartialModelOutput(t *testing.T) {
	llm := &stubLLM{
		insightFn: func(ctx context.Context, payload map[string]any) ([]string, error) {
			return []string{"Quais são as categorias campeãs de vendas?"}, nil
		},
	}

	stage := NewSuggestionStage(llm)
	out, err := stage.Run(context.Background(), NewContext("s1", "vendas por produto", nil))
	require.NoError(t, err)

	require.Len(t, out.Suggestions, 3)
	assert.Equal(t, "Quais são as categorias campeãs de vendas?", out.Suggestions[0])
	for _, s := range out.Suggestions {
		assert.NotEmpty(t, s)
	}
}

func TestDefaultSuggestionsBuckets(t *testing.T) {
	assert.Contains(t, defaultSuggestions("análise de pagamento")[0], "pagamento")
	assert.Contains(t, defaultSuggestions("reviews e avaliações")[0], "avaliação")
	assert.Equal(t, "Quais são as principais tendências de vendas?", defaultSuggestions("qualquer coisa")[0])
}

func TestTruncateIsRuneSafe(t *testing.T) {
	s := "avaliação média dos pedidos"
	got := truncate(s, 9)

	assert.Equal(t, "avaliação...", got)
}
