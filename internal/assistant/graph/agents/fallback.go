package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/savvythreads/server/internal/assistant/graph/parsers"
	"github.com/savvythreads/server/internal/assistant/graph/prompts"
	"github.com/savvythreads/server/internal/assistant/model"
	logx "github.com/savvythreads/server/pkg/logger"
)

// NewFallbackNode diagnoses a recorded failure and proposes which agent to
// rerun with what remediation. Every entry counts against the recovery
// ceiling; once exceeded the turn ends with the apology instead of another
// recovery round, so persistent failures cannot loop forever.
func NewFallbackNode(d Deps) *compose.Lambda {
	return compose.InvokableLambda(fallbackFunc(d))
}

func fallbackFunc(d Deps) func(context.Context, *model.AgentState) (*model.AgentState, error) {
	return func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		state.Processing.FallbackAttempts++
		if state.Processing.FallbackAttempts > d.Conversation.MaxFallbacks {
			logx.Warn().
				Int("attempts", state.Processing.FallbackAttempts).
				Str("error", state.Error.Error).
				Msg("recovery ceiling reached")
			succeed(state, model.AgentFallback)
			state.Response.Response = Apology
			return state, nil
		}

		system, err := prompts.FallbackSystem(ctx)
		if err != nil {
			failFallback(state, err)
			return state, nil
		}

		input := fmt.Sprintf("Failed agent: %s\nError: %s\nUser input: %s\n\nReturn only the JSON object:",
			state.Processing.CurrentAgent, state.Error.Error, state.Processing.UserInput)
		msgs := prompts.BuildMessages(system, state.ChatHistory, input, d.Conversation.HistoryTurns)

		out, err := d.Structured.Generate(ctx, msgs)
		if err != nil {
			failFallback(state, err)
			return state, nil
		}

		decision, err := parsers.ParseFallbackDecision(out.Content)
		if err != nil {
			failFallback(state, err)
			return state, nil
		}
		if !model.KnownRerunTarget(decision.RerunAgent) {
			failFallback(state, fmt.Errorf("unknown rerun target %q", decision.RerunAgent))
			return state, nil
		}

		logx.Info().
			Str("rerun_agent", decision.RerunAgent).
			Msg("fallback proposed recovery")

		// Keep Error.Error intact: the rerun target reads it alongside the
		// solution, and clears it on its own success.
		state.Processing.CurrentAgent = model.AgentFallback
		state.MarkExecuted(model.AgentFallback)
		state.Response.Metadata.AgentType = model.AgentFallback
		state.Response.Metadata.RerunAgent = decision.RerunAgent
		state.Response.Metadata.Fallback = decision.Solution
		state.Response.Response = "No response from the previous agent. Please try again."
		return state, nil
	}
}

// failFallback handles the fallback agent failing internally. The rerun
// signal is cleared so the graph finishes with the apology instead of
// re-entering a node with stale remediation.
func failFallback(state *model.AgentState, err error) {
	fail(state, model.AgentFallback, "Fallback agent error", err)
	state.Response.Metadata.ClearRerun()
}
