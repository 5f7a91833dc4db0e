package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/savvythreads/server/internal/assistant/model"
)

func TestRouteTarget(t *testing.T) {
	state := model.NewAgentState("u1", "u1_default", "hello", nil, nil)
	state.Processing.RouteDecision = model.AgentConversation
	assert.Equal(t, model.AgentConversation, RouteTarget(state))

	state.Processing.RouteDecision = model.AgentPlanning
	assert.Equal(t, model.AgentPlanning, RouteTarget(state))

	state.Processing.RouteDecision = model.AgentModeration
	assert.Equal(t, model.AgentModeration, RouteTarget(state))
}

func TestRouteTargetErrorWins(t *testing.T) {
	state := model.NewAgentState("u1", "u1_default", "hello", nil, nil)
	state.Processing.RouteDecision = model.AgentConversation
	state.Error.Error = "Router error: boom"
	assert.Equal(t, model.AgentFallback, RouteTarget(state))
}

func TestRouteTargetUnknownAgent(t *testing.T) {
	state := model.NewAgentState("u1", "u1_default", "hello", nil, nil)
	state.Processing.RouteDecision = "oracle_agent"
	assert.Equal(t, model.AgentFallback, RouteTarget(state))

	state.Processing.RouteDecision = ""
	assert.Equal(t, model.AgentFallback, RouteTarget(state))
}

func TestDispatchTargetPriority(t *testing.T) {
	both := model.Plan{
		{Agent: model.AgentSummarization},
		{Agent: model.AgentAnalysis},
	}
	assert.Equal(t, model.AgentAnalysis, DispatchTarget(both),
		"analysis takes priority regardless of plan order")

	assert.Equal(t, model.AgentSummarization,
		DispatchTarget(model.Plan{{Agent: model.AgentSummarization}}))

	assert.Equal(t, model.NodeFinalResponse, DispatchTarget(nil))
	assert.Equal(t, model.NodeFinalResponse, DispatchTarget(model.Plan{}))
}

func TestFeedbackTargetReplanBound(t *testing.T) {
	state := model.NewAgentState("u1", "u1_default", "hello", nil, nil)
	state.Response.Metadata.Feedback = &model.FeedbackVerdict{Proceed: false}

	state.Processing.ReplanAttempts = 1
	assert.Equal(t, model.AgentPlanning, FeedbackTarget(state, 2))

	// At the ceiling the verdict no longer matters.
	state.Processing.ReplanAttempts = 2
	assert.Equal(t, model.NodeFinalResponse, FeedbackTarget(state, 2))
}

func TestFeedbackTargetProceed(t *testing.T) {
	state := model.NewAgentState("u1", "u1_default", "hello", nil, nil)
	state.Response.Metadata.Feedback = &model.FeedbackVerdict{Proceed: true}
	assert.Equal(t, model.NodeFinalResponse, FeedbackTarget(state, 2))

	state.Error.Error = "Feedback error: boom"
	assert.Equal(t, model.AgentFallback, FeedbackTarget(state, 2))
}

func TestFallbackTarget(t *testing.T) {
	state := model.NewAgentState("u1", "u1_default", "hello", nil, nil)
	assert.Equal(t, model.NodeFinalResponse, FallbackTarget(state))

	state.Response.Metadata.RerunAgent = model.AgentPlanning
	assert.Equal(t, model.AgentPlanning, FallbackTarget(state))

	state.Response.Metadata.RerunAgent = model.AgentFallback
	assert.Equal(t, model.NodeFinalResponse, FallbackTarget(state),
		"fallback never re-enters itself")
}
