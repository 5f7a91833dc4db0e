package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savvythreads/server/internal/assistant/model"
)

func TestParseRouteDecision(t *testing.T) {
	out, err := ParseRouteDecision(`{"agent":"conversation_agent","confidence":0.92,"reasoning":"greeting","requires_context":false,"is_greeting":true}`)
	require.NoError(t, err)
	assert.Equal(t, model.AgentConversation, out.Agent)
	assert.InDelta(t, 0.92, out.Confidence, 1e-9)
	assert.True(t, out.IsGreeting)
}

func TestParseRouteDecisionFencedAndProse(t *testing.T) {
	content := "Sure, here is the decision:\n```json\n{\"agent\":\"planning_agent\",\"confidence\":1.4}\n```\n"
	out, err := ParseRouteDecision(content)
	require.NoError(t, err)
	assert.Equal(t, model.AgentPlanning, out.Agent)
	// confidence clamped into [0,1]
	assert.Equal(t, 1.0, out.Confidence)
}

func TestParseRouteDecisionRejectsGarbage(t *testing.T) {
	_, err := ParseRouteDecision("no json here")
	assert.Error(t, err)

	_, err = ParseRouteDecision(`{"confidence":0.5}`)
	assert.Error(t, err)

	_, err = ParseRouteDecision(`{"agent":"x"`)
	assert.Error(t, err)
}

func TestParsePlan(t *testing.T) {
	content := `{"plan":[{"agent":"analysis_agent","tools":[{"tool":"rag_tool","args":{"query":"theses on NLP"}},{"tool":"web_search_tool","args":{"query":"NLP 2026"}}]},{"agent":"summarization_agent","tools":[]}]}`
	plan, err := ParsePlan(content)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, model.AgentAnalysis, plan[0].Agent)
	require.Len(t, plan[0].Tools, 2)
	assert.Equal(t, model.ToolRAG, plan[0].Tools[0].Tool)
	assert.Equal(t, "theses on NLP", plan[0].Tools[0].Args["query"])
}

func TestParsePlanEmptyIsValid(t *testing.T) {
	plan, err := ParsePlan(`{"plan":[]}`)
	require.NoError(t, err)
	assert.Empty(t, plan)

	plan, err = ParsePlan(`{}`)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestParsePlanRejectsUnknownAgent(t *testing.T) {
	_, err := ParsePlan(`{"plan":[{"agent":"router_agent"}]}`)
	assert.Error(t, err)
}

func TestParseFallbackDecision(t *testing.T) {
	out, err := ParseFallbackDecision(`{"rerun_agent":"planning_agent","solution":"retry with a simpler plan"}`)
	require.NoError(t, err)
	assert.Equal(t, model.AgentPlanning, out.RerunAgent)
	assert.Equal(t, "retry with a simpler plan", out.Solution)

	_, err = ParseFallbackDecision(`{"rerun_agent":"planning_agent"}`)
	assert.Error(t, err)
}

func TestParseFeedbackVerdict(t *testing.T) {
	out, err := ParseFeedbackVerdict("```\n{\"proceed\": true}\n```")
	require.NoError(t, err)
	assert.True(t, out.Proceed)

	out, err = ParseFeedbackVerdict(`{"proceed": false}`)
	require.NoError(t, err)
	assert.False(t, out.Proceed)
}

func TestExtractJSONHandlesNestedBracesInStrings(t *testing.T) {
	out, err := ParseFallbackDecision(`{"rerun_agent":"router_agent","solution":"use {braces} literally"}`)
	require.NoError(t, err)
	assert.Equal(t, "use {braces} literally", out.Solution)
}
