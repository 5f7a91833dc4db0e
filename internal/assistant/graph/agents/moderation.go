package agents

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/savvythreads/server/internal/assistant/graph/prompts"
	"github.com/savvythreads/server/internal/assistant/model"
)

// NewModerationNode handles turns the router flagged as unsafe: supportive,
// non-judgmental text for self-harm-adjacent content, a normal helpful reply
// otherwise.
func NewModerationNode(d Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		system, err := prompts.ModerationSystem(ctx)
		if err != nil {
			fail(state, model.AgentModeration, "Moderation error", err)
			return state, nil
		}
		system = rerunSystem(state, model.AgentModeration, system)

		msgs := prompts.BuildMessages(system, state.ChatHistory, state.Processing.UserInput, d.Conversation.HistoryTurns)

		out, err := d.Responder.Generate(ctx, msgs)
		if err != nil {
			fail(state, model.AgentModeration, "Moderation error", err)
			return state, nil
		}
		if strings.TrimSpace(out.Content) == "" {
			fail(state, model.AgentModeration, "Moderation error", errEmptyResponse)
			return state, nil
		}

		succeed(state, model.AgentModeration)
		state.Response.Response = out.Content
		return state, nil
	})
}
