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

// NewPlanningNode breaks the request into an ordered list of agent/tool
// steps for the dispatcher. An empty plan is valid; the dispatcher then
// routes straight to the final response.
func NewPlanningNode(d Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		system, err := prompts.PlannerSystem(ctx)
		if err != nil {
			fail(state, model.AgentPlanning, "Planning error", err)
			return state, nil
		}
		system = rerunSystem(state, model.AgentPlanning, system)

		msgs := prompts.BuildMessages(system, state.ChatHistory,
			fmt.Sprintf("User input: %s\n\nReturn only the JSON object:", state.Processing.UserInput),
			d.Conversation.HistoryTurns)

		out, err := d.Structured.Generate(ctx, msgs)
		if err != nil {
			fail(state, model.AgentPlanning, "Planning error", err)
			return state, nil
		}

		plan, err := parsers.ParsePlan(out.Content)
		if err != nil {
			fail(state, model.AgentPlanning, "Planning error", err)
			return state, nil
		}

		logx.Debug().Int("steps", len(plan)).Msg("plan generated")

		succeed(state, model.AgentPlanning)
		state.Processing.Plan = plan
		return state, nil
	})
}
