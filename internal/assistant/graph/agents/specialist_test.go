package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savvythreads/server/internal/assistant/model"
)

func TestSpecialistPassesThroughWithoutStep(t *testing.T) {
	responder := &fixedModel{content: "unused"}
	node := specialistFunc(testDeps(&fixedModel{}, responder), model.AgentAnalysis, "analysis")

	state := model.NewAgentState("u1", "u1_default", "compare these", nil, nil)
	state.Processing.Plan = model.Plan{{Agent: model.AgentSummarization, Tools: []model.ToolCall{{Tool: model.ToolRAG}}}}

	out, err := node(context.Background(), state)
	require.NoError(t, err)
	assert.Zero(t, responder.calls, "passthrough makes no completion call")
	assert.Equal(t, model.AgentAnalysis, out.Processing.CurrentAgent)
	assert.Contains(t, out.Processing.ExecutedSteps, model.AgentAnalysis)
	assert.Empty(t, out.Error.Error)
}

func TestSpecialistPassesThroughWithEmptyToolList(t *testing.T) {
	responder := &fixedModel{content: "unused"}
	node := specialistFunc(testDeps(&fixedModel{}, responder), model.AgentAnalysis, "analysis")

	state := model.NewAgentState("u1", "u1_default", "compare these", nil, nil)
	state.Processing.Plan = model.Plan{{Agent: model.AgentAnalysis, Tools: nil}}

	out, err := node(context.Background(), state)
	require.NoError(t, err)
	assert.Zero(t, responder.calls, "a step without tools is a no-op passthrough")
	assert.Equal(t, model.AgentAnalysis, out.Processing.CurrentAgent)
	assert.Empty(t, out.Response.Response)
	assert.Empty(t, out.Error.Error)
}

func TestSpecialistSynthesizesOverToolOutputs(t *testing.T) {
	responder := &fixedModel{content: "Synthesis over retrieved documents."}
	node := specialistFunc(testDeps(&fixedModel{}, responder), model.AgentAnalysis, "analysis")

	state := model.NewAgentState("u1", "u1_default", "retrieval augmented generation", nil, nil)
	state.Processing.Plan = model.Plan{{
		Agent: model.AgentAnalysis,
		Tools: []model.ToolCall{{Tool: model.ToolRAG, Args: map[string]any{"query": "retrieval"}}},
	}}

	out, err := node(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, 1, responder.calls)
	assert.Equal(t, "Synthesis over retrieved documents.", out.Response.Response)
	assert.Empty(t, out.Error.Error)
}
