package agents

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/savvythreads/server/internal/assistant/graph/prompts"
	"github.com/savvythreads/server/internal/assistant/model"
)

// NewConversationNode answers conversational turns directly. Topic gating
// happens upstream in routing and moderation, so this agent never refuses on
// topical grounds.
func NewConversationNode(d Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state *model.AgentState) (*model.AgentState, error) {
		system, err := prompts.ConversationSystem(ctx)
		if err != nil {
			fail(state, model.AgentConversation, "Conversation error", err)
			return state, nil
		}
		system = rerunSystem(state, model.AgentConversation, system)

		msgs := prompts.BuildMessages(system, state.ChatHistory, state.Processing.UserInput, d.Conversation.HistoryTurns)

		out, err := d.Responder.Generate(ctx, msgs)
		if err != nil {
			fail(state, model.AgentConversation, "Conversation error", err)
			return state, nil
		}
		if strings.TrimSpace(out.Content) == "" {
			fail(state, model.AgentConversation, "Conversation error", errEmptyResponse)
			return state, nil
		}

		succeed(state, model.AgentConversation)
		state.Response.Response = out.Content
		return state, nil
	})
}
