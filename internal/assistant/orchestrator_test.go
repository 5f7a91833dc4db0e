package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savvythreads/server/internal/assistant/graph"
	"github.com/savvythreads/server/internal/assistant/graph/agents"
	"github.com/savvythreads/server/internal/assistant/model"
	"github.com/savvythreads/server/internal/assistant/store"
	"github.com/savvythreads/server/internal/assistant/tools"
)

// scriptedModel plays back canned completions in order. "ERR" entries make
// the call fail; an exhausted script repeats the last entry.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	last      string
}

func newScriptedModel(responses ...string) *scriptedModel {
	return &scriptedModel{responses: responses}
}

func (m *scriptedModel) Generate(ctx context.Context, msgs []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.last
	if len(m.responses) > 0 {
		out = m.responses[0]
		m.last = out
		m.responses = m.responses[1:]
	}
	if out == "ERR" {
		return nil, errors.New("model unavailable")
	}
	return schema.AssistantMessage(out, nil), nil
}

func (m *scriptedModel) Stream(ctx context.Context, msgs []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

var _ einomodel.BaseChatModel = (*scriptedModel)(nil)

func defaultConversationConfig() model.ConversationConfig {
	return model.ConversationConfig{
		ContextTokens:   model.DefaultContextTokens,
		SummarizeTokens: model.DefaultSummarizeTokens,
		CharsPerToken:   model.DefaultCharsPerToken,
		HistoryTurns:    10,
		MaxReplans:      2,
		MaxFallbacks:    2,
	}
}

func newTestOrchestrator(t *testing.T, structured, responder einomodel.BaseChatModel) *Orchestrator {
	t.Helper()

	cfg := defaultConversationConfig()
	registry := tools.NewRegistry(
		tools.NewRAGTool(tools.NewMemoryRetriever(nil)),
		tools.NewWebSearchTool(tools.NewStaticSearchProvider(nil)),
	)
	runner, err := graph.Build(context.Background(), agents.Deps{
		Structured:   structured,
		Responder:    responder,
		Registry:     registry,
		Conversation: cfg,
	})
	require.NoError(t, err)

	return NewOrchestrator(store.NewManager(cfg, nil), runner)
}

func TestChatConversationalTurn(t *testing.T) {
	structured := newScriptedModel(
		`{"agent": "conversation_agent", "confidence": 0.95, "reasoning": "greeting", "is_greeting": true}`,
	)
	responder := newScriptedModel("Hi there! How can I help you today?")
	o := newTestOrchestrator(t, structured, responder)

	res := o.Chat(context.Background(), "u1", "Hello")
	require.NotNil(t, res)
	assert.Equal(t, "Hi there! How can I help you today?", res.Response)
	assert.Equal(t, model.AgentConversation, res.AgentUsed)
	assert.Equal(t, model.AgentConversation, res.RouteDecision)
	assert.InDelta(t, 0.95, res.ConfidenceScore, 1e-9)
	assert.Empty(t, res.Error)
	assert.Contains(t, res.ExecutedSteps, model.AgentRouter)
	assert.Contains(t, res.ExecutedSteps, model.AgentConversation)
	assert.Contains(t, res.ExecutedSteps, model.NodeFinalResponse)
	assert.NotContains(t, res.ExecutedSteps, model.AgentFallback)

	history := o.ChatHistory("u1")
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "Hello", history[0].Content)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
}

func TestChatEmptyInputEndsWithApology(t *testing.T) {
	// The router refuses empty input before any model call; recovery keeps
	// re-entering it until the attempt ceiling forces the turn to finish.
	structured := newScriptedModel(
		`{"rerun_agent": "router_agent", "solution": "retry routing"}`,
	)
	responder := newScriptedModel("unused")
	o := newTestOrchestrator(t, structured, responder)

	res := o.Chat(context.Background(), "u2", "")
	require.NotNil(t, res)
	assert.Equal(t, agents.Apology, res.Response)
	assert.Contains(t, res.ExecutedSteps, model.AgentFallback)
	assert.Contains(t, res.ExecutedSteps, model.NodeFinalResponse)
}

func TestChatFallbackRecoversRouting(t *testing.T) {
	structured := newScriptedModel(
		"this is not json",
		`{"rerun_agent": "router_agent", "solution": "return only the JSON object"}`,
		`{"agent": "conversation_agent", "confidence": 0.8, "reasoning": "second attempt"}`,
	)
	responder := newScriptedModel("Recovered reply.")
	o := newTestOrchestrator(t, structured, responder)

	res := o.Chat(context.Background(), "u3", "Tell me something")
	require.NotNil(t, res)
	assert.Equal(t, "Recovered reply.", res.Response)
	assert.Equal(t, model.AgentConversation, res.AgentUsed)
	assert.Empty(t, res.Error, "a successful rerun clears the recorded error")
	assert.Contains(t, res.ExecutedSteps, model.AgentFallback)
	assert.Contains(t, res.ExecutedSteps, model.AgentConversation)
}

func TestChatPlanningFlow(t *testing.T) {
	structured := newScriptedModel(
		`{"agent": "planning_agent", "confidence": 0.9, "reasoning": "needs research"}`,
		`{"plan": [{"agent": "analysis_agent", "tools": [{"tool": "rag_tool", "args": {"query": "retrieval augmented generation"}}]}]}`,
		`{"proceed": true}`,
	)
	responder := newScriptedModel("RAG combines retrieval with generation.")
	o := newTestOrchestrator(t, structured, responder)

	res := o.Chat(context.Background(), "u4", "What is retrieval-augmented generation?")
	require.NotNil(t, res)
	assert.Equal(t, "RAG combines retrieval with generation.", res.Response)
	assert.Empty(t, res.Error)
	for _, step := range []string{
		model.AgentRouter, model.AgentPlanning, model.AgentDispatcher,
		model.AgentAnalysis, model.AgentFeedback, model.NodeFinalResponse,
	} {
		assert.Contains(t, res.ExecutedSteps, step)
	}
	require.NotEmpty(t, res.ToolResponses)
	assert.Equal(t, model.ToolRAG, res.ToolResponses[0].Tool)
}

func TestChatEmptyPlanSkipsSpecialists(t *testing.T) {
	structured := newScriptedModel(
		`{"agent": "planning_agent", "confidence": 0.7, "reasoning": "unclear"}`,
		`{"plan": []}`,
	)
	responder := newScriptedModel("unused")
	o := newTestOrchestrator(t, structured, responder)

	res := o.Chat(context.Background(), "u5", "Do the thing")
	require.NotNil(t, res)
	assert.NotContains(t, res.ExecutedSteps, model.AgentAnalysis)
	assert.NotContains(t, res.ExecutedSteps, model.AgentSummarization)
	assert.NotContains(t, res.ExecutedSteps, model.AgentFeedback)
	assert.Contains(t, res.ExecutedSteps, model.NodeFinalResponse)
}

func TestClearChat(t *testing.T) {
	structured := newScriptedModel(
		`{"agent": "conversation_agent", "confidence": 0.9, "reasoning": "greeting"}`,
	)
	responder := newScriptedModel("Hello!")
	o := newTestOrchestrator(t, structured, responder)

	assert.False(t, o.ClearChat(context.Background(), "u6"), "nothing to clear yet")

	o.Chat(context.Background(), "u6", "Hi")
	require.NotEmpty(t, o.ChatHistory("u6"))

	assert.True(t, o.ClearChat(context.Background(), "u6"))
	assert.Empty(t, o.ChatHistory("u6"))
}
