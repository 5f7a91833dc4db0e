package graph

import (
	"context"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/savvythreads/server/internal/assistant/model"
	logx "github.com/savvythreads/server/pkg/logger"
)

// newDispatcherNode records the dispatch visit. The actual fan-out decision
// lives in DispatchTarget on the outgoing branch.
func newDispatcherNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		state.Processing.CurrentAgent = model.AgentDispatcher
		state.MarkExecuted(model.AgentDispatcher)
		logx.Debug().
			Int("plan_steps", len(state.Processing.Plan)).
			Str("target", DispatchTarget(state.Processing.Plan)).
			Msg("dispatching plan")
		return state, nil
	})
}

// newFinalResponseNode stamps completion metadata. It is the single exit
// node, so every terminal path carries the same bookkeeping.
func newFinalResponseNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		state.MarkExecuted(model.NodeFinalResponse)
		state.Response.Metadata.FinalProcessingTime = time.Now().UTC()
		state.Response.Metadata.WorkflowCompleted = true
		state.Processing.IsProcessing = false
		if state.Error.Error != "" {
			logx.Warn().
				Str("error", state.Error.Error).
				Str("agent", state.Processing.CurrentAgent).
				Msg("workflow finished with recorded error")
		}
		return state, nil
	})
}
