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

// NewFeedbackNode evaluates the specialist output against the user's
// request and either releases it or sends the turn back to planning. It is
// the only place replan attempts are counted.
func NewFeedbackNode(d Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		system, err := prompts.FeedbackSystem(ctx)
		if err != nil {
			fail(state, model.AgentFeedback, "Feedback error", err)
			return state, nil
		}
		system = rerunSystem(state, model.AgentFeedback, system)

		input := fmt.Sprintf("User request: %s\n\nDraft response: %s\n\nReturn only the JSON object:",
			state.Processing.UserInput, state.Response.Response)
		msgs := prompts.BuildMessages(system, state.ChatHistory, input, d.Conversation.HistoryTurns)

		out, err := d.Structured.Generate(ctx, msgs)
		if err != nil {
			fail(state, model.AgentFeedback, "Feedback error", err)
			return state, nil
		}

		verdict, err := parsers.ParseFeedbackVerdict(out.Content)
		if err != nil {
			fail(state, model.AgentFeedback, "Feedback error", err)
			return state, nil
		}

		succeed(state, model.AgentFeedback)
		state.Response.Metadata.Feedback = verdict
		if !verdict.Proceed {
			state.Processing.ReplanAttempts++
			logx.Debug().
				Int("attempts", state.Processing.ReplanAttempts).
				Msg("feedback rejected draft")
		}
		return state, nil
	})
}
