package agents

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/savvythreads/server/internal/assistant/graph/prompts"
	"github.com/savvythreads/server/internal/assistant/model"
	"github.com/savvythreads/server/internal/assistant/tools"
	logx "github.com/savvythreads/server/pkg/logger"
)

// NewAnalysisNode runs the analysis specialist: execute its plan step's
// tools, then synthesize an answer over the tool outputs.
func NewAnalysisNode(d Deps) *compose.Lambda {
	return newSpecialistNode(d, model.AgentAnalysis,
		"analysis specialist focused on analyzing, comparing and synthesizing information")
}

// NewSummarizationNode runs the summarization specialist over the same
// tool-then-synthesize shape.
func NewSummarizationNode(d Deps) *compose.Lambda {
	return newSpecialistNode(d, model.AgentSummarization,
		"summarization specialist focused on condensing documents and conversation history")
}

func newSpecialistNode(d Deps, agent, role string) *compose.Lambda {
	return compose.InvokableLambda(specialistFunc(d, agent, role))
}

func specialistFunc(d Deps, agent, role string) func(context.Context, *model.AgentState) (*model.AgentState, error) {
	domain := "Analysis error"
	if agent == model.AgentSummarization {
		domain = "Summarization error"
	}
	return func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		step := state.Processing.Plan.StepFor(agent)
		if step == nil || len(step.Tools) == 0 {
			// Dispatched without work for this agent. Record the visit and
			// pass through so the flow still reaches feedback.
			logx.Warn().Str("agent", agent).Msg("no planned tools for agent")
			succeed(state, agent)
			return state, nil
		}

		responses := tools.Execute(ctx, d.Registry, state, step.Tools)

		system, err := prompts.SynthesisSystem(ctx, role, responses)
		if err != nil {
			fail(state, agent, domain, err)
			return state, nil
		}
		system = rerunSystem(state, agent, system)

		msgs := prompts.BuildMessages(system, state.ChatHistory,
			state.Processing.UserInput, d.Conversation.HistoryTurns)

		out, err := d.Responder.Generate(ctx, msgs)
		if err != nil {
			fail(state, agent, domain, err)
			return state, nil
		}
		if out.Content == "" {
			fail(state, agent, domain, errEmptyResponse)
			return state, nil
		}

		succeed(state, agent)
		state.Response.Response = out.Content
		return state, nil
	}
}
