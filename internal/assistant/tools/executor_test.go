package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savvythreads/server/internal/assistant/model"
)

type fakeTool struct {
	name string
	resp string
	err  error
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Invoke(_ context.Context, _ *model.AgentState, _ map[string]any) (string, error) {
	return f.resp, f.err
}

func TestExecutePartialFailurePreservesOrder(t *testing.T) {
	reg := NewRegistry(
		&fakeTool{name: "rag_tool", err: fmt.Errorf("index unavailable")},
		&fakeTool{name: "web_search_tool", resp: "three results"},
	)
	state := model.NewAgentState("u1", "c1", "q", nil, nil)

	calls := []model.ToolCall{
		{Tool: "rag_tool", Args: map[string]any{"query": "q"}},
		{Tool: "web_search_tool", Args: map[string]any{"query": "q"}},
	}
	responses := Execute(context.Background(), reg, state, calls)

	require.Len(t, responses, 2)
	assert.Equal(t, "rag_tool", responses[0].Tool)
	assert.Equal(t, "Error: index unavailable", responses[0].Response)
	assert.Equal(t, "web_search_tool", responses[1].Tool)
	assert.Equal(t, "three results", responses[1].Response)

	// Written back into the shared state, and the failure never set the
	// global error.
	assert.Equal(t, responses, state.Response.ToolResponses)
	assert.Empty(t, state.Error.Error)
	assert.Equal(t, "web_search_tool", state.Processing.LastTool)
}

func TestExecuteSkipsUnknownTools(t *testing.T) {
	reg := NewRegistry(&fakeTool{name: "rag_tool", resp: "ok"})
	state := model.NewAgentState("u1", "c1", "q", nil, nil)

	responses := Execute(context.Background(), reg, state, []model.ToolCall{
		{Tool: "no_such_tool"},
		{Tool: "rag_tool"},
	})

	require.Len(t, responses, 1)
	assert.Equal(t, "rag_tool", responses[0].Tool)
	assert.Equal(t, "ok", responses[0].Response)
}

func TestExecuteEmptyPlan(t *testing.T) {
	state := model.NewAgentState("u1", "c1", "q", nil, nil)
	responses := Execute(context.Background(), NewRegistry(), state, nil)
	assert.Empty(t, responses)
	assert.Empty(t, state.Response.ToolResponses)
}

func TestRAGToolAccumulatesRetrievalState(t *testing.T) {
	rag := NewRAGTool(NewMemoryRetriever(nil))
	state := model.NewAgentState("u1", "c1", "", nil, nil)

	resp, err := rag.Invoke(context.Background(), state, map[string]any{"query": "retrieval generation"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp)
	assert.NotEmpty(t, state.Retrieval.Documents["c1"])
	assert.LessOrEqual(t, len(state.Retrieval.Documents["c1"]), maxRetrievedDocs)
}

func TestRAGToolFallsBackToUserInput(t *testing.T) {
	rag := NewRAGTool(NewMemoryRetriever(nil))
	state := model.NewAgentState("u1", "c1", "federated learning", nil, nil)

	_, err := rag.Invoke(context.Background(), state, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, state.Retrieval.Documents["c1"])
}

func TestWebSearchToolEmptyQuery(t *testing.T) {
	ws := NewWebSearchTool(NewStaticSearchProvider(nil))
	state := model.NewAgentState("u1", "c1", "q", nil, nil)

	resp, err := ws.Invoke(context.Background(), state, map[string]any{"query": "   "})
	require.NoError(t, err)
	assert.Equal(t, "No search results.", resp)
}

func TestStaticSearchProviderCapsResults(t *testing.T) {
	p := NewStaticSearchProvider([]string{"go one", "go two", "go three"})
	results, err := p.Search(context.Background(), "go", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
