package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

func TestEnhancerNoOpWithoutRawResponse(t *testing.T) {
	stage := NewEnhancerStage(&stubLLM{})

	pc := NewContext("s1", "olá", nil)
	out, err := stage.Run(context.Background(), pc)
	require.NoError(t, err)

	assert.Empty(t, out.History)
}

func TestEnhancerKeepsRawResponseOnModelError(t *testing.T) {
	llm := &stubLLM{
		insightFn: func(ctx context.Context, payload map[string]any) ([]string, error) {
			return nil, errors.New("model down")
		},
	}
	stage := NewEnhancerStage(llm)

	pc := NewContext("s1", "quantos pedidos?", nil)
	pc.RawResponse = "Temos 99441 pedidos registrados."

	out, err := stage.Run(context.Background(), pc)
	require.NoError(t, err)

	last := out.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, "Temos 99441 pedidos registrados.", last.Content)
}

func TestEnhancerFinalMessageMetadata(t *testing.T) {
	llm := &stubLLM{
		insightFn: func(ctx context.Context, payload map[string]any) ([]string, error) {
			return []string{"**Resposta melhorada** com destaque para as métricas."}, nil
		},
	}
	stage := NewEnhancerStage(llm)

	pc := NewContext("s1", "quantos pedidos?", nil)
	pc.RawResponse = "resposta bruta"
	pc.Interpretation = &domain.Interpretation{Intent: "Contar pedidos", Confidence: 1.0}
	pc.QueryResults = []map[string]any{{"total": int64(99441)}}
	pc.Suggestions = []string{"a?", "b?", "c?"}

	out, err := stage.Run(context.Background(), pc)
	require.NoError(t, err)

	last := out.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, domain.RoleAssistant, last.Role)
	assert.Equal(t, "**Resposta melhorada** com destaque para as métricas.", last.Content)

	sources, ok := last.Metadata["sources"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"Banco de dados de produtos", "Histórico de pedidos", "Análise de intenção com IA"}, sources)
	assert.Equal(t, []string{"a?", "b?", "c?"}, last.Metadata["suggestions"])
}

func TestCalculateConfidence(t *testing.T) {
	tests := []struct {
		name string
		pc   Context
		want float64
	}{
		{
			name: "base only",
			pc:   Context{},
			want: 0.5,
		},
		{
			name: "interpretation only",
			pc:   Context{Interpretation: &domain.Interpretation{Confidence: 0.9}},
			want: 0.77,
		},
		{
			name: "rows only",
			pc:   Context{QueryResults: []map[string]any{{"a": 1}}},
			want: 0.7,
		},
		{
			name: "capped at one",
			pc: Context{
				Interpretation: &domain.Interpretation{Confidence: 1.0},
				QueryResults:   []map[string]any{{"a": 1}},
			},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calculateConfidence(tt.pc), 1e-9)
		})
	}
}

func TestExtractSourcesEmptyContext(t *testing.T) {
	assert.Empty(t, extractSources(Context{}))
}
