package pipeline

import "context"

// Stage is one unit in the orchestration pipeline. It consumes a Context and
// returns the updated one. A stage that has nothing to do returns its input
// unchanged.
type Stage interface {
	Name() string
	Run(ctx context.Context, pc Context) (Context, error)
}

// Stage names, used in trail metadata and error messages.
const (
	StageInterpreter  = "interpreter"
	StageDataQuery    = "data_query"
	StageExternalTool = "mcp"
	StageResponder    = "responder"
	StageSuggestion   = "suggestion"
	StageEnhancer     = "enhancer"
)
