package agents

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savvythreads/server/internal/assistant/model"
	"github.com/savvythreads/server/internal/assistant/tools"
)

type fixedModel struct {
	content string
	err     error
	calls   int
}

func (m *fixedModel) Generate(ctx context.Context, msgs []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.content, nil), nil
}

func (m *fixedModel) Stream(ctx context.Context, msgs []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func testDeps(structured, responder *fixedModel) Deps {
	return Deps{
		Structured: structured,
		Responder:  responder,
		Registry:   tools.NewRegistry(),
		Conversation: model.ConversationConfig{
			HistoryTurns: 10,
			MaxReplans:   2,
			MaxFallbacks: 2,
		},
	}
}

func TestRouterEmptyInputShortCircuits(t *testing.T) {
	structured := &fixedModel{content: `{"agent": "conversation_agent"}`}
	node := routerFunc(testDeps(structured, &fixedModel{}))

	state := model.NewAgentState("u1", "u1_default", "", nil, nil)
	out, err := node(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, model.AgentFallback, out.Processing.RouteDecision)
	assert.Equal(t, "No user input provided", out.Error.Error)
	assert.Equal(t, model.AgentRouter, out.Processing.CurrentAgent)
	assert.Zero(t, structured.calls, "no completion call for empty input")
}

func TestRouterModelFailureRecordsError(t *testing.T) {
	structured := &fixedModel{err: errors.New("model unavailable")}
	node := routerFunc(testDeps(structured, &fixedModel{}))

	state := model.NewAgentState("u1", "u1_default", "hi", nil, nil)
	out, err := node(context.Background(), state)
	require.NoError(t, err, "agents never surface errors to the graph")
	assert.Equal(t, model.AgentFallback, out.Processing.RouteDecision)
	assert.Contains(t, out.Error.Error, "Routing error")
	assert.Equal(t, Apology, out.Response.Response)
}

func TestFallbackCeilingEndsWithApology(t *testing.T) {
	structured := &fixedModel{content: `{"rerun_agent": "router_agent", "solution": "retry"}`}
	node := fallbackFunc(testDeps(structured, &fixedModel{}))

	state := model.NewAgentState("u1", "u1_default", "hi", nil, nil)
	state.Error.Error = "Routing error: boom"
	state.Processing.CurrentAgent = model.AgentRouter
	state.Processing.FallbackAttempts = 2

	out, err := node(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Processing.FallbackAttempts)
	assert.Equal(t, Apology, out.Response.Response)
	assert.Empty(t, out.Response.Metadata.RerunAgent)
	assert.Empty(t, out.Error.Error)
	assert.Zero(t, structured.calls, "ceiling reached before any model call")
}

func TestFallbackProposesRerun(t *testing.T) {
	structured := &fixedModel{content: `{"rerun_agent": "planning_agent", "solution": "simplify the plan"}`}
	node := fallbackFunc(testDeps(structured, &fixedModel{}))

	state := model.NewAgentState("u1", "u1_default", "hi", nil, nil)
	state.Error.Error = "Planning error: boom"
	state.Processing.CurrentAgent = model.AgentPlanning

	out, err := node(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, model.AgentPlanning, out.Response.Metadata.RerunAgent)
	assert.Equal(t, "simplify the plan", out.Response.Metadata.Fallback)
	assert.Equal(t, model.AgentFallback, out.Processing.CurrentAgent)
	assert.Equal(t, "Planning error: boom", out.Error.Error,
		"the original error stays visible to the rerun target")

	// The rerun target sees the remediation and clears it on success.
	solution, origErr, ok := out.FallbackRerunFor(model.AgentPlanning)
	require.True(t, ok)
	assert.Equal(t, "simplify the plan", solution)
	assert.Equal(t, "Planning error: boom", origErr)
}
