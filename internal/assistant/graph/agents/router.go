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

// NewRouterNode decides which specialist should handle the turn. Note the
// contract quirk carried from the workflow design: on success CurrentAgent is
// set to the route decision value, not "router_agent", and the graph's
// conditional edge reads both fields.
func NewRouterNode(d Deps) *compose.Lambda {
	return compose.InvokableLambda(routerFunc(d))
}

func routerFunc(d Deps) func(context.Context, *model.AgentState) (*model.AgentState, error) {
	return func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		// Empty input short-circuits to fallback without any completion call.
		if state.Processing.UserInput == "" {
			state.Processing.RouteDecision = model.AgentFallback
			state.Error.Error = "No user input provided"
			state.Processing.CurrentAgent = model.AgentRouter
			return state, nil
		}

		system, err := prompts.RouterSystem(ctx)
		if err != nil {
			fail(state, model.AgentRouter, "Routing error", err)
			state.Processing.RouteDecision = model.AgentFallback
			return state, nil
		}
		system = rerunSystem(state, model.AgentRouter, system)

		msgs := prompts.BuildMessages(system, state.ChatHistory,
			fmt.Sprintf("User input: %s\n\nReturn only the JSON object:", state.Processing.UserInput),
			d.Conversation.HistoryTurns)

		out, err := d.Structured.Generate(ctx, msgs)
		if err != nil {
			fail(state, model.AgentRouter, "Routing error", err)
			state.Processing.RouteDecision = model.AgentFallback
			return state, nil
		}

		decision, err := parsers.ParseRouteDecision(out.Content)
		if err != nil {
			fail(state, model.AgentRouter, "Routing error", err)
			state.Processing.RouteDecision = model.AgentFallback
			return state, nil
		}

		target := decision.Agent
		switch target {
		case model.AgentConversation, model.AgentPlanning, model.AgentModeration:
		default:
			fail(state, model.AgentRouter, "Routing error", fmt.Errorf("unknown route target %q", target))
			state.Processing.RouteDecision = model.AgentFallback
			return state, nil
		}

		logx.Debug().
			Str("route", target).
			Float64("confidence", decision.Confidence).
			Str("reasoning", decision.Reasoning).
			Msg("routing decision")

		succeed(state, model.AgentRouter)
		state.Processing.RouteDecision = target
		state.Processing.ConfidenceScore = decision.Confidence
		// Route decision drives CurrentAgent directly; the audit trail
		// still records the router itself.
		state.Processing.CurrentAgent = target
		state.Response.Metadata.AgentType = target
		return state, nil
	}
}
