package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

// ExternalToolStage lets the model pick at most one externally hosted tool and
// folds its output into the context. Every failure inside the stage is
// contained: it becomes a single system message, never a pipeline abort.
type ExternalToolStage struct {
	tools   domain.ToolClient
	llm     domain.LLMClient
	enabled bool
}

func NewExternalToolStage(tools domain.ToolClient, llm domain.LLMClient, enabled bool) *ExternalToolStage {
	return &ExternalToolStage{tools: tools, llm: llm, enabled: enabled}
}

func (s *ExternalToolStage) Name() string {
	return StageExternalTool
}

// toolKeywords triggers tool usage when the interpreter did not ask for it
// explicitly.
var toolKeywords = []string{
	"buscar na web",
	"pesquisar online",
	"informação externa",
	"dados externos",
	"api externa",
}

func (s *ExternalToolStage) Run(ctx context.Context, pc Context) (Context, error) {
	log := observability.LoggerFromContext(ctx)

	if !s.enabled {
		return pc, nil
	}

	if !s.shouldUseTools(pc) {
		return pc, nil
	}

	out, err := s.invoke(ctx, pc)
	if err != nil {
		log.Error().Err(err).Msg("mcp: stage error contained")
		return pc.WithMessage(domain.AgentMessage{
			Role:    domain.RoleSystem,
			Content: "Erro ao usar ferramentas MCP: " + err.Error(),
			Metadata: map[string]any{
				"agent": s.Name(),
				"error": err.Error(),
			},
		}), nil
	}

	return out, nil
}

func (s *ExternalToolStage) shouldUseTools(pc Context) bool {
	if pc.Interpretation != nil && pc.Interpretation.RequiresExternalTools {
		return true
	}

	query := strings.ToLower(pc.UserQuery)
	for _, kw := range toolKeywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

func (s *ExternalToolStage) invoke(ctx context.Context, pc Context) (Context, error) {
	log := observability.LoggerFromContext(ctx)

	available, err := s.tools.ListTools(ctx)
	if err != nil {
		return pc, fmt.Errorf("listing tools: %w", err)
	}
	if len(available) == 0 {
		log.Info().Msg("mcp: no tools available")
		return pc, nil
	}

	decision, err := s.decideToolUsage(ctx, pc, available)
	if err != nil {
		return pc, err
	}
	if decision == nil {
		log.Info().Msg("mcp: no suitable tool chosen")
		return pc, nil
	}

	if err := validateArguments(available, decision); err != nil {
		return pc, err
	}

	result, err := s.tools.CallTool(ctx, decision.ServerName, decision.ToolName, decision.Arguments)
	if err != nil {
		return pc, fmt.Errorf("calling tool %s::%s: %w", decision.ServerName, decision.ToolName, err)
	}

	pc.ToolResults = &domain.ToolInvocation{
		Tool:   decision.ToolName,
		Server: decision.ServerName,
		Data:   result,
	}

	log.Info().Str("tool", decision.ToolName).Str("server", decision.ServerName).Msg("mcp: tool executed")

	return pc.WithMessage(domain.AgentMessage{
		Role:    domain.RoleTool,
		Content: formatToolResult(result),
		Metadata: map[string]any{
			"agent":  s.Name(),
			"tool":   decision.ToolName,
			"server": decision.ServerName,
		},
	}), nil
}

type toolDecision struct {
	ToolName   string         `json:"toolName"`
	ServerName string         `json:"serverName"`
	Arguments  map[string]any `json:"arguments"`
}

const toolDecisionPrompt = `Você é um assistente especializado em decidir qual ferramenta MCP usar.

Pergunta do usuário: %s

Contexto da interpretação:
%s

Ferramentas disponíveis:
%s

TAREFA:
1. Analise a pergunta do usuário
2. Escolha a ferramenta mais apropriada
3. Determine os parâmetros necessários
4. Responda APENAS com JSON válido no formato:
{
  "toolName": "nome_da_tool",
  "serverName": "nome_do_servidor",
  "arguments": { "param1": "valor1" }
}

Se nenhuma ferramenta for apropriada, responda: { "toolName": null }`

func (s *ExternalToolStage) decideToolUsage(ctx context.Context, pc Context, available []domain.ToolDescriptor) (*toolDecision, error) {
	var catalog strings.Builder
	for i, tool := range available {
		fmt.Fprintf(&catalog, "%d. %s::%s\n   Descrição: %s\n   Parâmetros: %s\n\n",
			i+1, tool.ServerName, tool.Name, tool.Description, string(tool.InputSchema))
	}

	interp, _ := json.MarshalIndent(pc.Interpretation, "", "  ")
	prompt := fmt.Sprintf(toolDecisionPrompt, pc.UserQuery, string(interp), catalog.String())

	response, err := s.llm.GenerateText(ctx, []domain.AgentMessage{
		{Role: domain.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("tool decision: %w", err)
	}

	block := extractJSONBlock(response)
	if block == "" {
		return nil, nil
	}

	var decision toolDecision
	if err := json.Unmarshal([]byte(block), &decision); err != nil {
		return nil, fmt.Errorf("tool decision: malformed JSON: %w", err)
	}
	if decision.ToolName == "" {
		return nil, nil
	}
	if decision.Arguments == nil {
		decision.Arguments = map[string]any{}
	}
	return &decision, nil
}

// validateArguments checks the chosen arguments against the tool's declared
// input schema before anything is sent to the server.
func validateArguments(available []domain.ToolDescriptor, decision *toolDecision) error {
	var schema json.RawMessage
	for _, tool := range available {
		if tool.Name == decision.ToolName && tool.ServerName == decision.ServerName {
			schema = tool.InputSchema
			break
		}
	}
	if schema == nil {
		return fmt.Errorf("tool %s::%s not found in catalog", decision.ServerName, decision.ToolName)
	}
	if len(schema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(decision.Arguments),
	)
	if err != nil {
		return fmt.Errorf("validating tool arguments: %w", err)
	}
	if !result.Valid() {
		var reasons []string
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}
		return fmt.Errorf("tool arguments rejected by schema: %s", strings.Join(reasons, "; "))
	}
	return nil
}

func formatToolResult(result *domain.ToolCallResult) string {
	if result.IsError {
		var parts []string
		for _, c := range result.Content {
			parts = append(parts, c.Text)
		}
		return "Erro ao executar ferramenta: " + strings.Join(parts, "\n")
	}

	var parts []string
	for _, c := range result.Content {
		switch c.Type {
		case "text":
			parts = append(parts, c.Text)
		case "image":
			parts = append(parts, "[Imagem: "+c.MimeType+"]")
		case "resource":
			parts = append(parts, "[Recurso: "+c.MimeType+"]")
		}
	}
	return strings.Join(parts, "\n")
}
