// Package assistant exposes the conversational engine: it owns per-user
// state, snapshots context for each turn, runs the workflow graph and files
// the results back into conversation history.
package assistant

import (
	"context"
	"fmt"

	"github.com/savvythreads/server/internal/assistant/graph"
	"github.com/savvythreads/server/internal/assistant/graph/agents"
	"github.com/savvythreads/server/internal/assistant/model"
	"github.com/savvythreads/server/internal/assistant/store"
	logx "github.com/savvythreads/server/pkg/logger"
)

// DefaultChatSuffix names the single chat thread each user converses in.
const DefaultChatSuffix = "_default"

// Result is the outcome of one conversational turn.
type Result struct {
	Response        string               `json:"response"`
	AgentUsed       string               `json:"agent_used"`
	RouteDecision   string               `json:"route_decision,omitempty"`
	ConfidenceScore float64              `json:"confidence_score,omitempty"`
	ExecutedSteps   []string             `json:"executed_steps"`
	ToolResponses   []model.ToolResponse `json:"tool_responses,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// Orchestrator ties the state manager to the compiled workflow graph. Safe
// for concurrent use; turns for the same user are serialized on the user's
// lock.
type Orchestrator struct {
	states *store.Manager
	runner graph.Runner
	cfg    model.ConversationConfig
}

// NewOrchestrator wires the state manager and graph runner together.
func NewOrchestrator(states *store.Manager, runner graph.Runner) *Orchestrator {
	return &Orchestrator{
		states: states,
		runner: runner,
		cfg:    states.Config(),
	}
}

// ChatID returns the default chat thread id for a user.
func ChatID(userID string) string {
	return userID + DefaultChatSuffix
}

// Chat runs one conversational turn: record the user message, snapshot the
// context window, execute the workflow and record the assistant reply.
// Errors inside the workflow surface as apology responses, never as a
// returned error; only a broken runner propagates.
func (o *Orchestrator) Chat(ctx context.Context, userID, message string) (res *Result) {
	chatID := ChatID(userID)

	us := o.states.GetUserState(userID)
	us.Lock()
	defer us.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logx.Error().
				Str("user_id", userID).
				Interface("panic", r).
				Msg("workflow panicked")
			res = &Result{
				Response:  agents.Apology,
				AgentUsed: model.AgentModeration,
				Error:     fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	chat := us.GetOrCreateChat(chatID)
	userMsg := chat.AddMessage(model.RoleUser, message, nil)
	o.states.ArchiveMessage(ctx, chatID, userMsg)

	window := chat.ContextWindow(o.cfg.ContextTokens, o.cfg.CharsPerToken)
	state := model.NewAgentState(userID, chatID, message, window, us.LongTermHistory)

	out, err := o.runner.Run(ctx, state)
	if err != nil {
		// The graph contract keeps node failures inside the state; an error
		// here means the runnable itself broke.
		logx.Error().Err(err).Str("user_id", userID).Msg("workflow run failed")
		return &Result{
			Response:  agents.Apology,
			AgentUsed: model.AgentModeration,
			Error:     err.Error(),
		}
	}

	response := out.Response.Response
	if response == "" {
		response = "I'm sorry, I couldn't produce a response. Please try again."
	}

	asstMsg := chat.AddMessage(model.RoleAssistant, response, map[string]any{
		"agent_used": out.Response.Metadata.AgentType,
	})
	o.states.ArchiveMessage(ctx, chatID, asstMsg)

	o.states.SummarizeChatIfNeeded(ctx, us, chatID)

	return &Result{
		Response:        response,
		AgentUsed:       out.Response.Metadata.AgentType,
		RouteDecision:   out.Processing.RouteDecision,
		ConfidenceScore: out.Processing.ConfidenceScore,
		ExecutedSteps:   out.Processing.ExecutedSteps,
		ToolResponses:   out.Response.ToolResponses,
		Error:           out.Error.Error,
	}
}

// ChatHistory returns a copy of the user's default chat messages.
func (o *Orchestrator) ChatHistory(userID string) []model.Message {
	us := o.states.GetUserState(userID)
	us.Lock()
	defer us.Unlock()

	chat := us.GetChat(ChatID(userID))
	if chat == nil {
		return nil
	}
	out := make([]model.Message, len(chat.Messages))
	copy(out, chat.Messages)
	return out
}

// ClearChat drops the user's default chat thread, in memory and in the
// archive. Reports whether a thread existed.
func (o *Orchestrator) ClearChat(ctx context.Context, userID string) bool {
	us := o.states.GetUserState(userID)
	us.Lock()
	defer us.Unlock()

	chatID := ChatID(userID)
	existed := us.DeleteChat(chatID)
	if existed {
		o.states.ClearArchive(ctx, chatID)
	}
	return existed
}

// LongTermSummaries returns the user's accumulated summary records.
func (o *Orchestrator) LongTermSummaries(userID string) []model.SummaryRecord {
	us := o.states.GetUserState(userID)
	us.Lock()
	defer us.Unlock()

	return us.LongTermHistory.Records()
}
