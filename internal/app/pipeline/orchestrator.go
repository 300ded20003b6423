package pipeline

import (
	"context"
	"time"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

// Orchestrator runs the fixed stage sequence for one chat turn. The stage list
// is assembled once at construction; execution is strictly linear.
type Orchestrator struct {
	stages []Stage
}

// Options selects the optional stages. The external tool stage is only wired
// when a tool client is configured.
type Options struct {
	Tools       domain.ToolClient
	EnableTools bool
}

// NewOrchestrator builds the default pipeline:
// interpreter -> data_query [-> mcp] -> responder -> suggestion -> enhancer.
func NewOrchestrator(llm domain.LLMClient, executor domain.QueryExecutor, opts Options) *Orchestrator {
	stages := []Stage{
		NewInterpreterStage(llm),
		NewDataQueryStage(llm, executor),
	}

	if opts.Tools != nil {
		stages = append(stages, NewExternalToolStage(opts.Tools, llm, opts.EnableTools))
	}

	stages = append(stages,
		NewResponderStage(llm),
		NewSuggestionStage(llm),
		NewEnhancerStage(llm),
	)

	return &Orchestrator{stages: stages}
}

// Process runs every stage in order. A failing stage is recorded as a system
// message and the pipeline continues with the context as it stood before that
// stage ran; the turn never aborts mid-conversation.
func (o *Orchestrator) Process(ctx context.Context, sessionID, userQuery string, history []domain.AgentMessage) Context {
	pc, _ := o.run(ctx, sessionID, userQuery, history, nil)
	return pc
}

// Step records which stage appended what to the trail, for introspection.
type Step struct {
	Stage  string
	Result string
}

// ProcessWithSteps is Process plus a per-stage trace of produced messages.
func (o *Orchestrator) ProcessWithSteps(ctx context.Context, sessionID, userQuery string, history []domain.AgentMessage) (Context, []Step) {
	steps := make([]Step, 0, len(o.stages))
	pc, steps := o.run(ctx, sessionID, userQuery, history, steps)
	return pc, steps
}

func (o *Orchestrator) run(ctx context.Context, sessionID, userQuery string, history []domain.AgentMessage, steps []Step) (Context, []Step) {
	log := observability.LoggerFromContext(ctx).With().
		Str("session_id", sessionID).
		Logger()

	log.Info().Int("stages", len(o.stages)).Str("query", userQuery).Msg("pipeline started")

	pc := NewContext(sessionID, userQuery, history)

	for _, stage := range o.stages {
		start := time.Now()
		before := len(pc.History)

		out, err := stage.Run(ctx, pc)
		if err != nil {
			log.Error().Err(err).Str("stage", stage.Name()).Msg("stage failed, continuing degraded")

			pc = pc.WithMessage(domain.AgentMessage{
				Role:    domain.RoleSystem,
				Content: "Erro no agente " + stage.Name(),
				Metadata: map[string]any{
					"agent": stage.Name(),
					"error": err.Error(),
				},
			})
			if steps != nil {
				steps = append(steps, Step{Stage: stage.Name(), Result: pc.LastMessage().Content})
			}
			continue
		}

		pc = out
		log.Info().
			Str("stage", stage.Name()).
			Int64("elapsed_ms", time.Since(start).Milliseconds()).
			Msg("stage completed")

		if steps != nil && len(pc.History) > before {
			steps = append(steps, Step{Stage: stage.Name(), Result: pc.LastMessage().Content})
		}
	}

	log.Info().Msg("pipeline complete")
	return pc, steps
}
